package sourcemap

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

var urlPrefixes = []string{"//# sourceMappingURL=", "//@ sourceMappingURL=", "/*# sourceMappingURL="}

// Extract splits expanded text into the code and its trailing inline source
// map comment. The map is nil when the text carries no inline map. The
// returned code keeps every line before the comment, so line numbers in it
// match the map.
func Extract(expanded string) (string, *Map, error) {
	trimmed := strings.TrimRight(expanded, " \t\r\n")
	start := strings.LastIndexByte(trimmed, '\n') + 1
	last := strings.TrimSpace(trimmed[start:])

	ref, ok := commentURL(last)
	if !ok {
		return expanded, nil, nil
	}

	data, err := decodeDataURL(ref)
	if err != nil {
		return expanded, nil, err
	}

	m, err := Parse(data)
	if err != nil {
		return expanded, nil, err
	}

	return expanded[:start], m, nil
}

// commentURL returns the URL of a sourceMappingURL comment line.
func commentURL(line string) (string, bool) {
	for _, prefix := range urlPrefixes {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		rest := strings.TrimPrefix(line, prefix)
		if strings.HasPrefix(prefix, "/*") {
			rest = strings.TrimSuffix(strings.TrimSpace(rest), "*/")
		}
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// decodeDataURL decodes a data:application/json URL into its payload.
func decodeDataURL(u string) ([]byte, error) {
	if !strings.HasPrefix(u, "data:") {
		return nil, fmt.Errorf("%w: external source map %q not supported", ErrInvalidSourceMap, u)
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidSourceMap)
	}

	params := strings.Split(meta, ";")
	if params[0] != "" && params[0] != "application/json" {
		return nil, fmt.Errorf("%w: unexpected media type %q", ErrInvalidSourceMap, params[0])
	}

	for _, p := range params[1:] {
		if p == "base64" {
			data, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSourceMap, err)
			}
			return data, nil
		}
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceMap, err)
	}
	return []byte(text), nil
}
