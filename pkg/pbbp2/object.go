package pbbp2

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// LongMode selects how ToObject renders the two 64-bit fields.
type LongMode int

const (
	// LongsNative keeps SeqID and LogID as uint64.
	LongsNative LongMode = iota
	// LongsNumber renders them as float64. Values above 2^53 lose precision.
	LongsNumber
	// LongsString renders them as decimal strings.
	LongsString
)

// BytesMode selects how ToObject renders the payload.
type BytesMode int

const (
	// BytesRaw keeps the payload as []byte.
	BytesRaw BytesMode = iota
	// BytesBase64 renders the payload as a standard base64 string.
	BytesBase64
)

// ConversionOptions controls ToObject.
type ConversionOptions struct {
	Longs LongMode
	Bytes BytesMode
	// Defaults emits absent optional fields with their zero value.
	Defaults bool
	// Arrays emits an empty headers array when there are no headers.
	Arrays bool
}

// JSONOptions is the conversion used by MarshalJSON.
var JSONOptions = ConversionOptions{Longs: LongsString, Bytes: BytesBase64}

// VerifyHeader checks that v is an object with string key and value. It
// returns a *VerifyError describing the first violation, or nil.
func VerifyHeader(v any) error {
	if reason := verifyHeader(v); reason != "" {
		return &VerifyError{Reason: reason}
	}

	return nil
}

func verifyHeader(v any) string {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return "object expected"
	}

	if _, ok := obj["key"].(string); !ok {
		return "key: string expected"
	}

	if _, ok := obj["value"].(string); !ok {
		return "value: string expected"
	}

	return ""
}

// VerifyFrame checks that v is an object matching the Frame schema. It never
// panics and returns a *VerifyError describing the first violation, or nil.
func VerifyFrame(v any) error {
	if reason := verifyFrame(v); reason != "" {
		return &VerifyError{Reason: reason}
	}

	return nil
}

func verifyFrame(v any) string {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return "object expected"
	}

	if !isLong(obj["SeqID"]) {
		return "SeqID: integer|Long expected"
	}

	if !isLong(obj["LogID"]) {
		return "LogID: integer|Long expected"
	}

	if !isInteger(obj["service"]) {
		return "service: integer expected"
	}

	if !isInteger(obj["method"]) {
		return "method: integer expected"
	}

	if raw, ok := present(obj, "headers"); ok {
		list, isList := asList(raw)
		if !isList {
			return "headers: array expected"
		}

		for _, h := range list {
			if reason := verifyHeader(h); reason != "" {
				return "headers." + reason
			}
		}
	}

	for _, name := range []string{"payloadEncoding", "payloadType"} {
		if raw, ok := present(obj, name); ok {
			if _, isString := raw.(string); !isString {
				return name + ": string expected"
			}
		}
	}

	if raw, ok := present(obj, "payload"); ok && !isBuffer(raw) {
		return "payload: buffer expected"
	}

	if raw, ok := present(obj, "LogIDNew"); ok {
		if _, isString := raw.(string); !isString {
			return "LogIDNew: string expected"
		}
	}

	return ""
}

// HeaderFromObject builds a Header from a plain object. Absent fields are
// left empty; non-string values are formatted.
func HeaderFromObject(obj map[string]any) (*Header, error) {
	h := &Header{}

	if raw, ok := present(obj, "key"); ok {
		h.Key = toString(raw)
	}

	if raw, ok := present(obj, "value"); ok {
		h.Value = toString(raw)
	}

	return h, nil
}

// FrameFromObject builds a Frame from a plain object. The 64-bit fields accept
// numbers, decimal strings and {low, high} objects. The payload accepts a
// base64 string, a byte slice or an array of numbers.
func FrameFromObject(obj map[string]any) (*Frame, error) {
	const path = ".pbbp2.Frame"

	f := &Frame{}

	var err error

	if raw, ok := present(obj, "SeqID"); ok {
		if f.SeqID, err = toUint64(raw); err != nil {
			return nil, &ConversionError{Path: path + ".SeqID", Reason: err.Error()}
		}
	}

	if raw, ok := present(obj, "LogID"); ok {
		if f.LogID, err = toUint64(raw); err != nil {
			return nil, &ConversionError{Path: path + ".LogID", Reason: err.Error()}
		}
	}

	if raw, ok := present(obj, "service"); ok {
		if f.Service, err = toInt32(raw); err != nil {
			return nil, &ConversionError{Path: path + ".service", Reason: err.Error()}
		}
	}

	if raw, ok := present(obj, "method"); ok {
		if f.Method, err = toInt32(raw); err != nil {
			return nil, &ConversionError{Path: path + ".method", Reason: err.Error()}
		}
	}

	if raw, ok := present(obj, "headers"); ok {
		list, isList := asList(raw)
		if !isList {
			return nil, &ConversionError{Path: path + ".headers", Reason: "array expected"}
		}

		f.Headers = make([]Header, 0, len(list))

		for _, item := range list {
			m, isObject := item.(map[string]any)
			if !isObject {
				return nil, &ConversionError{Path: path + ".headers", Reason: "object expected"}
			}

			h, _ := HeaderFromObject(m)
			f.Headers = append(f.Headers, *h)
		}
	}

	if raw, ok := present(obj, "payloadEncoding"); ok {
		f.PayloadEncoding = String(toString(raw))
	}

	if raw, ok := present(obj, "payloadType"); ok {
		f.PayloadType = String(toString(raw))
	}

	if raw, ok := present(obj, "payload"); ok {
		if f.Payload, err = toBytes(raw); err != nil {
			return nil, &ConversionError{Path: path + ".payload", Reason: err.Error()}
		}
	}

	if raw, ok := present(obj, "LogIDNew"); ok {
		f.LogIDNew = String(toString(raw))
	}

	return f, nil
}

// ToObject converts the header to a plain object.
func (h *Header) ToObject() map[string]any {
	return map[string]any{"key": h.Key, "value": h.Value}
}

// ToObject converts the frame to a plain object using the field names of the
// JSON form.
func (f *Frame) ToObject(opts ConversionOptions) map[string]any {
	obj := map[string]any{
		"SeqID":   renderLong(f.SeqID, opts.Longs),
		"LogID":   renderLong(f.LogID, opts.Longs),
		"service": f.Service,
		"method":  f.Method,
	}

	if len(f.Headers) > 0 || opts.Arrays || opts.Defaults {
		headers := make([]any, 0, len(f.Headers))
		for i := range f.Headers {
			headers = append(headers, f.Headers[i].ToObject())
		}

		obj["headers"] = headers
	}

	optionalString := func(name string, v *string) {
		switch {
		case v != nil:
			obj[name] = *v
		case opts.Defaults:
			obj[name] = ""
		}
	}

	optionalString("payloadEncoding", f.PayloadEncoding)
	optionalString("payloadType", f.PayloadType)

	switch {
	case f.Payload != nil:
		obj["payload"] = renderBytes(f.Payload, opts.Bytes)
	case opts.Defaults:
		obj["payload"] = renderBytes([]byte{}, opts.Bytes)
	}

	optionalString("LogIDNew", f.LogIDNew)

	return obj
}

// MarshalJSON renders the frame with longs as strings and base64 payload.
func (f *Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToObject(JSONOptions))
}

// UnmarshalJSON parses the form produced by MarshalJSON.
func (f *Frame) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("decoding frame object: %w", err)
	}

	decoded, err := FrameFromObject(obj)
	if err != nil {
		return err
	}

	*f = *decoded

	return nil
}

// MarshalJSON renders the header as {"key": ..., "value": ...}.
func (h *Header) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.ToObject())
}

// UnmarshalJSON parses a header object.
func (h *Header) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding header object: %w", err)
	}

	decoded, _ := HeaderFromObject(obj)
	*h = *decoded

	return nil
}

func renderLong(v uint64, mode LongMode) any {
	switch mode {
	case LongsNumber:
		return float64(v)
	case LongsString:
		return strconv.FormatUint(v, 10)
	default:
		return v
	}
}

func renderBytes(b []byte, mode BytesMode) any {
	if mode == BytesBase64 {
		return base64.StdEncoding.EncodeToString(b)
	}

	return append([]byte{}, b...)
}

func present(obj map[string]any, key string) (any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, false
	}

	return v, true
}

func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}

	return list, true
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case float64:
		return !math.IsInf(n, 0) && n == math.Trunc(n)
	case float32:
		return n == float32(math.Trunc(float64(n)))
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}

		_, err := strconv.ParseUint(string(n), 10, 64)

		return err == nil
	case nil:
		return false
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// isLong accepts an integer or a {low, high} object of integers.
func isLong(v any) bool {
	if isInteger(v) {
		return true
	}

	obj, ok := v.(map[string]any)

	return ok && isInteger(obj["low"]) && isInteger(obj["high"])
}

func isBuffer(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}

	_, ok := asList(v)

	return ok
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case string:
		return parseUint64(n)
	case json.Number:
		return parseUint64(string(n))
	case float64:
		return floatToUint64(n)
	case float32:
		return floatToUint64(float64(n))
	case map[string]any:
		low, errLow := toInt64(n["low"])
		high, errHigh := toInt64(n["high"])

		if errLow != nil || errHigh != nil {
			return 0, fmt.Errorf("%w: Long expected", ErrMalformed)
		}

		return uint64(uint32(high))<<32 | uint64(uint32(low)), nil //nolint:gosec // 32-bit halves
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), nil //nolint:gosec // two's complement wrap
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	default:
		return 0, fmt.Errorf("%w: integer|Long expected, got %T", ErrMalformed, v)
	}
}

func parseUint64(s string) (uint64, error) {
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return uint64(i), nil //nolint:gosec // two's complement wrap
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrMalformed, s)
	}

	return floatToUint64(f)
}

func floatToUint64(f float64) (uint64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: integer expected", ErrMalformed)
	}

	f = math.Trunc(f)
	if f < 0 {
		return uint64(int64(f)), nil //nolint:gosec // two's complement wrap
	}

	if f >= math.MaxUint64 {
		return math.MaxUint64, nil
	}

	return uint64(f), nil
}

func toInt64(v any) (int64, error) {
	u, err := toUint64(v)

	return int64(u), err //nolint:gosec // two's complement wrap
}

// toInt32 truncates to 32 bits the way a JavaScript "x | 0" does.
func toInt32(v any) (int32, error) {
	u, err := toUint64(v)
	if err != nil {
		return 0, err
	}

	return int32(uint32(u)), nil //nolint:gosec // 32-bit wrap
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return append([]byte{}, b...), nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(b)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64: %w", ErrMalformed, err)
		}

		return decoded, nil
	}

	list, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("%w: buffer expected", ErrMalformed)
	}

	out := make([]byte, len(list))

	for i, item := range list {
		n, err := toUint64(item)
		if err != nil {
			return nil, err
		}

		out[i] = byte(n) //nolint:gosec // byte truncation
	}

	return out, nil
}
