package ws

import (
	"time"
)

// FrameType is the Method field of a frame.
type FrameType int32

const (
	// FrameTypeControl carries ping and pong.
	FrameTypeControl FrameType = 0
	// FrameTypeData carries events and card callbacks.
	FrameTypeData FrameType = 1
)

// Header keys used on frames.
const (
	HeaderType      = "type"
	HeaderMessageID = "message_id"
	HeaderSum       = "sum"
	HeaderSeq       = "seq"
	HeaderTraceID   = "trace_id"
	HeaderBizRt     = "biz_rt"
)

// MessageType is the value of the type header.
type MessageType string

const (
	MessageTypePing  MessageType = "ping"
	MessageTypePong  MessageType = "pong"
	MessageTypeEvent MessageType = "event"
	MessageTypeCard  MessageType = "card"
)

// Query parameters of the connection URL.
const (
	queryServiceID = "service_id"
	queryDeviceID  = "device_id"
)

// Handshake failure headers set by the gateway.
const (
	headerHandshakeStatus      = "Handshake-Status"
	headerHandshakeMsg         = "Handshake-Msg"
	headerHandshakeAuthErrCode = "Handshake-Autherrcode"
)

// ServerConfig is pushed by the server at discovery time and in pong
// payloads. Durations are in seconds. ReconnectCount is nil when the server
// left it out, since zero and negative counts are meaningful.
type ServerConfig struct {
	ReconnectCount    *int `json:"ReconnectCount"`
	ReconnectInterval int  `json:"ReconnectInterval"`
	ReconnectNonce    int  `json:"ReconnectNonce"`
	PingInterval      int  `json:"PingInterval"`
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// endpointRequest is the body of the discovery call.
type endpointRequest struct {
	AppID     string `json:"AppID"`
	AppSecret string `json:"AppSecret"`
}

// endpoint is the data member of the discovery response.
type endpoint struct {
	URL          string        `json:"URL"`
	ClientConfig *ServerConfig `json:"ClientConfig"`
}

// response is the JSON payload written back on a data frame.
type response struct {
	Code    int               `json:"code"`
	Headers map[string]string `json:"headers,omitempty"`
	Data    []byte            `json:"data,omitempty"`
}
