package kvstate

import (
	"fmt"
	"strconv"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// Key converts an absolute store path into a KV key.
//
// The root path "/" maps to the empty key.
//
// Example:
//
//	kvstate.Key("/live_nodes/host:8983_solr") // "live_nodes.host=3A8983_solr"
func Key(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("path must be absolute: %q", path)
	}
	if path == "/" {
		return "", nil
	}

	segments := strings.Split(path[1:], "/")
	for i, seg := range segments {
		if seg == "" {
			return "", fmt.Errorf("empty segment in path %q", path)
		}
		segments[i] = Escape(seg)
	}

	return strings.Join(segments, "."), nil
}

// Escape encodes a path segment as a single KV key token.
func Escape(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if isPlain(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('=')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}

	return b.String()
}

// Unescape reverses Escape.
func Unescape(token string) (string, error) {
	if !strings.Contains(token, "=") {
		return token, nil
	}

	var b strings.Builder
	b.Grow(len(token))
	for i := 0; i < len(token); i++ {
		if token[i] != '=' {
			b.WriteByte(token[i])
			continue
		}
		if i+2 >= len(token) {
			return "", fmt.Errorf("truncated escape in %q", token)
		}
		v, err := strconv.ParseUint(token[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid escape in %q: %w", token, err)
		}
		b.WriteByte(byte(v))
		i += 2
	}

	return b.String(), nil
}

func isPlain(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
