package httpds

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/ribbondz/rsv-sub000/internal/datasource/file"
)

// Source streams one URL. A path ending in .gz, .bz2, .zst or .xz is
// decompressed the same way local files are; Content-Encoding is handled by
// the transport.
type Source struct {
	url    string
	client *Client
}

// NewSource returns a Source for rawURL using a client built from cfg.
func NewSource(rawURL string, cfg Config) *Source {
	return &Source{url: rawURL, client: NewClient(cfg)}
}

// Name returns the URL.
func (s *Source) Name() string { return s.url }

// Open issues the request and returns the (decompressed) body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("httpds: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpds: unsupported scheme %q", u.Scheme)
	}
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	rc, err := file.Decompress(resp.Body, file.Compression(u.Path))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("open %s: %w", s.url, err)
	}
	return rc, nil
}
