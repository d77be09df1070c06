package resource

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DataURI is decoded content of "data:" URI.
type DataURI struct {
	MediaType string
	Charset   string
	Data      []byte
}

// IsDataURI reports whether s is "data:" URI.
func IsDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// ParseDataURI decodes data URI, both base64 and percent-encoded payloads
// are supported.
func ParseDataURI(s string) (*DataURI, error) {
	if !IsDataURI(s) {
		return nil, errors.New("not a data uri")
	}
	meta, payload, found := strings.Cut(s[5:], ",")
	if !found {
		return nil, errors.New("malformed data uri: missing comma")
	}

	d := &DataURI{MediaType: "text/plain", Charset: "US-ASCII"}
	encoded := false
	for i, part := range strings.Split(meta, ";") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0 && part != "" && !strings.Contains(part, "="):
			if strings.EqualFold(part, "base64") {
				encoded = true
				continue
			}
			d.MediaType = strings.ToLower(part)
		case strings.EqualFold(part, "base64"):
			encoded = true
		case len(part) > 8 && strings.EqualFold(part[:8], "charset="):
			d.Charset = part[8:]
		}
	}

	if !encoded {
		data, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("unable to unescape data uri: %w", err)
		}
		d.Data = []byte(data)
		return d, nil
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, payload)
	if p, err := url.PathUnescape(payload); err == nil {
		payload = p
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return nil, fmt.Errorf("unable to decode base64 data uri: %w", err)
		}
	}
	d.Data = data
	return d, nil
}

// dataKey returns cache key of data uri: its payload.
func dataKey(s string) string {
	if _, payload, found := strings.Cut(s, ","); found {
		return "data:" + payload
	}
	return s
}
