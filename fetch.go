package greenroom

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher retrieves the raw bytes behind an asset locator. Fetch is called
// from loader goroutines and must be safe for concurrent use.
//
// A load runs to completion or failure; there is no mid-flight cancellation,
// so Fetch takes no deadline. Implementations that need timeouts should set
// them on their own transport (e.g. http.Client.Timeout).
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

// HTTPFetcher fetches assets over HTTP(S). The zero value is ready to use
// with http.DefaultClient.
type HTTPFetcher struct {
	// Client is the HTTP client to use. Nil means http.DefaultClient.
	Client *http.Client
	// BaseURL, when non-empty, is prefixed to relative locators so manifests
	// can use short paths like "img/hero.png".
	BaseURL string
}

// Fetch performs a GET and returns the response body.
// Non-2xx statuses are reported as errors.
func (f *HTTPFetcher) Fetch(url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	full := url
	if f.BaseURL != "" && !strings.Contains(url, "://") {
		full = strings.TrimSuffix(f.BaseURL, "/") + "/" + strings.TrimPrefix(url, "/")
	}
	resp, err := client.Get(full)
	if err != nil {
		return nil, fmt.Errorf("greenroom: fetch %s: %w", full, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("greenroom: fetch %s: unexpected status %s", full, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("greenroom: fetch %s: read body: %w", full, err)
	}
	return data, nil
}

// FileFetcher reads assets from the local filesystem, resolving locators
// relative to Root (or the working directory when Root is empty).
type FileFetcher struct {
	Root string
}

func (f *FileFetcher) Fetch(url string) ([]byte, error) {
	path := url
	if f.Root != "" {
		path = filepath.Join(f.Root, filepath.FromSlash(url))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("greenroom: read %s: %w", path, err)
	}
	return data, nil
}

// FSFetcher reads assets from an fs.FS, typically an embed.FS so a game can
// ship its assets inside the binary while keeping manifest-driven loading.
type FSFetcher struct {
	FS fs.FS
}

func (f *FSFetcher) Fetch(url string) ([]byte, error) {
	data, err := fs.ReadFile(f.FS, url)
	if err != nil {
		return nil, fmt.Errorf("greenroom: read %s: %w", url, err)
	}
	return data, nil
}
