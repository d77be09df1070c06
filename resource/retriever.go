package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrRemoteDisabled is returned for http(s) resources when remote access is
// not allowed.
var ErrRemoteDisabled = errors.New("remote resources are disabled")

// ErrTooLarge is returned when resource exceeds size limit.
var ErrTooLarge = errors.New("resource is too large")

// Retriever fetches raw resource bytes by absolute URI or local path.
type Retriever interface {
	Retrieve(ctx context.Context, uri string) ([]byte, error)
}

// RetrieverOptions controls DefaultRetriever. Zero MaxSize means no limit,
// zero Timeout means no timeout.
type RetrieverOptions struct {
	AllowRemote bool
	Timeout     time.Duration
	MaxSize     int64
	UserAgent   string
	AuthToken   string
}

// DefaultRetriever reads local files, "file:" and "data:" URIs and, when
// allowed, http(s) resources.
type DefaultRetriever struct {
	opts   RetrieverOptions
	client *http.Client
	log    *zap.Logger
}

// NewDefaultRetriever creates retriever.
func NewDefaultRetriever(opts RetrieverOptions, log *zap.Logger) *DefaultRetriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultRetriever{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    log.Named("retriever"),
	}
}

// Retrieve implements Retriever.
func (r *DefaultRetriever) Retrieve(ctx context.Context, uri string) ([]byte, error) {
	if IsDataURI(uri) {
		d, err := ParseDataURI(uri)
		if err != nil {
			return nil, err
		}
		return d.Data, nil
	}
	if !isURL(uri) {
		return r.readFile(uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("unable to parse uri '%s': %w", uri, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = "//" + u.Host + path
		}
		return r.readFile(path)
	case "http", "https":
		if !r.opts.AllowRemote {
			return nil, fmt.Errorf("unable to retrieve '%s': %w", uri, ErrRemoteDisabled)
		}
		return r.fetch(ctx, uri)
	}
	return nil, fmt.Errorf("unsupported uri scheme '%s'", u.Scheme)
}

func (r *DefaultRetriever) readFile(path string) ([]byte, error) {
	if r.opts.MaxSize > 0 {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("unable to access '%s': %w", path, err)
		}
		if fi.Size() > r.opts.MaxSize {
			return nil, fmt.Errorf("'%s' has %d bytes: %w", path, fi.Size(), ErrTooLarge)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	return data, nil
}

func (r *DefaultRetriever) fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request for '%s': %w", uri, err)
	}
	if r.opts.UserAgent != "" {
		req.Header.Set("User-Agent", r.opts.UserAgent)
	}
	if r.opts.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.opts.AuthToken)
	}

	r.log.Debug("Fetching remote resource", zap.String("uri", uri))
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch '%s': %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch '%s': %s", uri, resp.Status)
	}

	var body io.Reader = resp.Body
	if r.opts.MaxSize > 0 {
		body = io.LimitReader(resp.Body, r.opts.MaxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", uri, err)
	}
	if r.opts.MaxSize > 0 && int64(len(data)) > r.opts.MaxSize {
		return nil, fmt.Errorf("'%s': %w", uri, ErrTooLarge)
	}
	return data, nil
}
