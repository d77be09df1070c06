package resource

import (
	"encoding/base64"
	"testing"
)

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		in, mediaType, data string
	}{
		{"data:,Hello%2C%20World", "text/plain", "Hello, World"},
		{"data:text/css;charset=utf-8,p%7Bcolor%3Ared%7D", "text/css", "p{color:red}"},
		{"data:text/plain;base64,SGVs\nbG8=", "text/plain", "Hello"},
		{"data:image/svg+xml;base64,PHN2Zy8+", "image/svg+xml", "<svg/>"},
		{"DATA:;base64,SGk", "text/plain", "Hi"},
	}
	for _, tt := range tests {
		d, err := ParseDataURI(tt.in)
		if err != nil {
			t.Errorf("ParseDataURI(%q) error = %v", tt.in, err)
			continue
		}
		if d.MediaType != tt.mediaType || string(d.Data) != tt.data {
			t.Errorf("ParseDataURI(%q) = %q %q", tt.in, d.MediaType, d.Data)
		}
	}

	for _, bad := range []string{"data:text/plain", "data:;base64,@@@", "http://x"} {
		if _, err := ParseDataURI(bad); err == nil {
			t.Errorf("ParseDataURI(%q) must fail", bad)
		}
	}
}

func TestDataCacheKey(t *testing.T) {
	if cacheKey("data:image/png;base64,AAAA") != cacheKey("data:image/x-png;base64,AAAA") {
		t.Error("data uris with same payload must share cache entry")
	}
}
