package viewer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var errTest = errors.New("test failure")

func newTestFetcher(t *testing.T) *fetcher {
	t.Helper()
	f, err := newFetcher()
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}
	t.Cleanup(f.dispose)
	return f
}

func TestFetchPairOrdersMaterialFirst(t *testing.T) {
	var mu sync.Mutex
	var requests []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.URL.Path)
		mu.Unlock()
		w.Write([]byte("# dummy asset\n"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	objPath, mtlPath, err := f.fetchPair(context.Background(), srv.URL+"/teapot.obj", srv.URL+"/teapot.mtl")
	if err != nil {
		t.Fatalf("fetchPair failed: %v", err)
	}

	mu.Lock()
	if len(requests) != 2 {
		mu.Unlock()
		t.Fatalf("Expected 2 requests, got %d", len(requests))
	}
	if requests[0] != "/teapot.mtl" || requests[1] != "/teapot.obj" {
		t.Errorf("Expected material fetched before geometry, got order %v", requests)
	}
	mu.Unlock()

	for _, p := range []string{objPath, mtlPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected downloaded file at %s: %v", p, err)
		}
	}
}

func TestFetchLocalPathPassesThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t)
	got, err := f.fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got != path {
		t.Errorf("Expected local path to pass through unchanged, got %s", got)
	}
}

func TestFetchMissingLocalPath(t *testing.T) {
	f := newTestFetcher(t)
	if _, err := f.fetch(context.Background(), filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("Expected error for missing local file")
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	if _, err := f.fetch(context.Background(), srv.URL+"/missing.obj"); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestFetchCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	f := newTestFetcher(t)
	go func() {
		_, err := f.fetch(ctx, srv.URL+"/slow.obj")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected error after context cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not observe cancellation")
	}
}

func TestFetchPairGeometryOnly(t *testing.T) {
	dir := t.TempDir()
	objFile := filepath.Join(dir, "cube.obj")
	if err := os.WriteFile(objFile, []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(t)
	objPath, mtlPath, err := f.fetchPair(context.Background(), objFile, "")
	if err != nil {
		t.Fatalf("fetchPair failed: %v", err)
	}
	if objPath != objFile {
		t.Errorf("Expected obj path %s, got %s", objFile, objPath)
	}
	if mtlPath != "" {
		t.Errorf("Expected empty mtl path, got %s", mtlPath)
	}
}

func TestLoadTaskWait(t *testing.T) {
	task := newLoadTask()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := task.Wait(ctx); err == nil {
		t.Error("Expected Wait to fail on canceled context")
	}

	res := &LoadResult{URL: "cube.obj"}
	go task.finish(res)

	got, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if got.URL != "cube.obj" {
		t.Errorf("Expected result for cube.obj, got %+v", got)
	}
}
