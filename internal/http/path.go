package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/larksuite/oapi-client/pkg/lark"
)

// FillPath replaces every :name segment of path with the escaped value of
// params[name].
func FillPath(path string, params map[string]string) (string, error) {
	if !strings.Contains(path, ":") {
		return path, nil
	}

	segments := strings.Split(path, "/")

	for i, segment := range segments {
		name, ok := strings.CutPrefix(segment, ":")
		if !ok || name == "" {
			continue
		}

		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%w: %s in %s", lark.ErrMissingPathParam, name, path)
		}

		segments[i] = url.PathEscape(value)
	}

	return strings.Join(segments, "/"), nil
}
