package viewer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"
)

// fetcher resolves asset URLs to local files the OBJ decoder can read.
// Local paths pass through; http(s) URLs are downloaded into a private
// temp directory.
type fetcher struct {
	client *http.Client
	dir    string
}

func newFetcher() (*fetcher, error) {
	dir, err := os.MkdirTemp("", "objview-assets-")
	if err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &fetcher{
		client: &http.Client{Timeout: 2 * time.Minute},
		dir:    dir,
	}, nil
}

// fetchPair resolves an OBJ/MTL source pair. The material source, when
// present, is fetched to completion strictly before the geometry source.
func (f *fetcher) fetchPair(ctx context.Context, objURL, mtlURL string) (objPath, mtlPath string, err error) {
	if mtlURL != "" {
		mtlPath, err = f.fetch(ctx, mtlURL)
		if err != nil {
			return "", "", fmt.Errorf("fetch material %s: %w", mtlURL, err)
		}
	}
	objPath, err = f.fetch(ctx, objURL)
	if err != nil {
		return "", "", fmt.Errorf("fetch geometry %s: %w", objURL, err)
	}
	return objPath, mtlPath, nil
}

func (f *fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	if u, err := url.Parse(rawURL); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.download(ctx, u)
	}
	if _, err := os.Stat(rawURL); err != nil {
		return "", err
	}
	return rawURL, nil
}

func (f *fetcher) download(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	base := path.Base(u.Path)
	if base == "/" || base == "." {
		base = "asset"
	}
	out, err := os.CreateTemp(f.dir, "*-"+base)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func (f *fetcher) dispose() {
	if f.dir != "" {
		os.RemoveAll(f.dir)
	}
}
