package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

// ErrNotFound means the upstream has no such asset.
var ErrNotFound = errors.New("asset not found")

// Asset is a cached response body.
type Asset struct {
	Path        string
	ContentType string
	Body        []byte
}

// Fetcher is the network side of the cache.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (Asset, error)
}

func contentType(name string, body []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(body)
}

// DirFetcher reads assets from a file system, e.g. os.DirFS("web").
type DirFetcher struct {
	FS fs.FS
}

func (d DirFetcher) Fetch(_ context.Context, p string) (Asset, error) {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		name = "index.html"
	}
	if fi, err := fs.Stat(d.FS, name); err == nil && fi.IsDir() {
		return Asset{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, p)
	}
	body, err := fs.ReadFile(d.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("read %s: %w", name, err)
	}
	return Asset{Path: p, ContentType: contentType(name, body), Body: body}, nil
}

// HTTPFetcher fetches assets from an origin server.
type HTTPFetcher struct {
	Origin string
	Client *http.Client
}

func (h HTTPFetcher) Fetch(ctx context.Context, p string) (Asset, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(h.Origin, "/")+p, nil)
	if err != nil {
		return Asset{}, fmt.Errorf("build request for %s: %w", p, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Asset{}, fmt.Errorf("fetch %s: unexpected status %s", p, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("read %s: %w", p, err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = contentType(p, body)
	}
	return Asset{Path: p, ContentType: ct, Body: body}, nil
}
