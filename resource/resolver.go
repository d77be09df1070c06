package resource

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Resolver retrieves resources relative to document base and caches them for
// the duration of a single conversion. Cache is keyed by resolved absolute
// URI, data URIs by their payload. Resolver is not safe for concurrent use.
type Resolver struct {
	ctx       context.Context
	uri       *UriResolver
	retriever Retriever
	log       *zap.Logger

	images map[string]*ImageData
	raw    map[string][]byte
}

// NewResolver creates resolver for base URI. Nil retriever means
// DefaultRetriever with remote access enabled.
func NewResolver(ctx context.Context, base string, retriever Retriever, log *zap.Logger) (*Resolver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	uri, err := NewUriResolver(base)
	if err != nil {
		return nil, err
	}
	if retriever == nil {
		retriever = NewDefaultRetriever(RetrieverOptions{AllowRemote: true}, log)
	}
	r := &Resolver{
		ctx:       ctx,
		uri:       uri,
		retriever: retriever,
		log:       log.Named("resources"),
	}
	r.ResetCache()
	return r, nil
}

// UriResolver returns resolver for document base.
func (r *Resolver) UriResolver() *UriResolver {
	return r.uri
}

// ResetCache drops everything retrieved so far. Must be called between
// conversions sharing resolver.
func (r *Resolver) ResetCache() {
	r.images = make(map[string]*ImageData)
	r.raw = make(map[string][]byte)
}

// ResolveURI resolves reference against document base.
func (r *Resolver) ResolveURI(src string) (string, error) {
	if IsDataURI(strings.TrimSpace(src)) {
		return strings.TrimSpace(src), nil
	}
	return r.uri.Resolve(src)
}

func cacheKey(uri string) string {
	if IsDataURI(uri) {
		return dataKey(uri)
	}
	return uri
}

// RetrieveBytes returns raw content of resource, nil when it could not be
// retrieved. Failure is logged.
func (r *Resolver) RetrieveBytes(src string) []byte {
	data, _, err := r.retrieve(src)
	if err != nil {
		r.log.Warn("Unable to retrieve resource", zap.String("src", shorten(src)), zap.Error(err))
		return nil
	}
	return data
}

func (r *Resolver) retrieve(src string) ([]byte, string, error) {
	uri, err := r.ResolveURI(src)
	if err != nil {
		return nil, "", err
	}
	key := cacheKey(uri)
	if data, ok := r.raw[key]; ok {
		return data, uri, nil
	}
	data, err := r.retriever.Retrieve(r.ctx, uri)
	if err != nil {
		return nil, uri, err
	}
	r.raw[key] = data
	return data, uri, nil
}

// RetrieveImage returns decoded image, nil when image is absent or broken.
// Failure is logged and never aborts conversion.
func (r *Resolver) RetrieveImage(src string) *ImageData {
	uri, err := r.ResolveURI(src)
	if err != nil {
		r.log.Warn("Unable to resolve image", zap.String("src", shorten(src)), zap.Error(err))
		return nil
	}
	key := cacheKey(uri)
	if img, ok := r.images[key]; ok {
		return img
	}

	data, _, err := r.retrieve(uri)
	if err != nil {
		r.log.Warn("Unable to retrieve image", zap.String("src", shorten(src)), zap.Error(err))
		r.images[key] = nil
		return nil
	}
	img, err := DecodeImage(shorten(uri), data)
	if err != nil {
		r.log.Warn("Unable to decode image", zap.String("src", shorten(src)), zap.Error(err))
		r.images[key] = nil
		return nil
	}
	r.log.Debug("Image retrieved", zap.String("src", shorten(src)), zap.String("mime", img.MIME), zap.Int("width", img.Width), zap.Int("height", img.Height))
	r.images[key] = img
	return img
}

// RetrieveStyleSheet returns style sheet text converted to UTF-8 and its
// resolved location. Encoding is taken from BOM, then from @charset rule,
// then from hint (usually charset attribute of link element).
func (r *Resolver) RetrieveStyleSheet(src, hint string) ([]byte, string, error) {
	data, uri, err := r.retrieve(src)
	if err != nil {
		return nil, uri, err
	}
	text, err := DecodeStyleSheet(data, hint)
	if err != nil {
		return nil, uri, fmt.Errorf("unable to decode style sheet '%s': %w", shorten(uri), err)
	}
	return text, uri, nil
}

var charsetRule = regexp.MustCompile(`^@charset\s+["']([^"']+)["']\s*;`)

// DecodeStyleSheet converts style sheet bytes to UTF-8.
func DecodeStyleSheet(data []byte, hint string) ([]byte, error) {
	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	default:
		name := hint
		if m := charsetRule.FindSubmatch(data); m != nil {
			name = string(m[1])
		}
		if name == "" {
			return data, nil
		}
		e, err := ianaindex.IANA.Encoding(name)
		if err != nil || e == nil {
			return nil, fmt.Errorf("unsupported charset '%s'", name)
		}
		enc = e
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// shorten keeps data URIs readable in logs.
func shorten(s string) string {
	if IsDataURI(s) && len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
