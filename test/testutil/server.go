package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glorpus-work/protoc-fetcher/pkg/archive"
)

// ReleaseServer is a fake protobuf release host. Its Client rewrites every
// request to the local server, so code under test can keep using the real
// release URLs.
type ReleaseServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	assets   map[string][]byte
	requests []string
}

// NewReleaseServer starts a release server that is closed when the test ends.
func NewReleaseServer(t *testing.T) *ReleaseServer {
	t.Helper()
	s := &ReleaseServer{assets: map[string][]byte{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *ReleaseServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var body []byte
	for key, data := range s.assets {
		if strings.HasSuffix(r.URL.Path, key) {
			body = data
			break
		}
	}
	s.mu.Unlock()

	if body == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// AssetKey is the tail of the release URL path for a version and suffix.
func AssetKey(version, suffix string) string {
	return fmt.Sprintf("/v%s/protoc-%s-%s.zip", version, version, suffix)
}

// AddRaw serves data for any request path ending in key.
func (s *ReleaseServer) AddRaw(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[key] = data
}

// AddRelease zips files (archive path -> content) and serves the result as
// the release archive for version and suffix.
func (s *ReleaseServer) AddRelease(t *testing.T, version, suffix string, files map[string]string) {
	t.Helper()
	s.AddRaw(AssetKey(version, suffix), BuildZip(t, files))
}

// AddProtocRelease serves a release laid out like the official archives,
// with a bin/protoc script that prints "libprotoc <version>".
func (s *ReleaseServer) AddProtocRelease(t *testing.T, version, suffix string) {
	t.Helper()
	binary := "bin/protoc"
	if strings.HasPrefix(suffix, "win") {
		binary = "bin/protoc.exe"
	}
	s.AddRelease(t, version, suffix, map[string]string{
		binary:                                ProtocScript(version),
		"include/google/protobuf/any.proto":   "syntax = \"proto3\";\n",
		"include/google/protobuf/empty.proto": "syntax = \"proto3\";\n",
		"readme.txt":                          "Protocol Buffers - Google's data interchange format\n",
	})
}

// ProtocScript is a stand-in protoc binary.
func ProtocScript(version string) string {
	return fmt.Sprintf("#!/bin/sh\necho libprotoc %s\n", version)
}

// Requests returns the original (pre-rewrite) URLs requested through Client.
func (s *ReleaseServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Client returns an HTTP client that sends every request to the fake host.
func (s *ReleaseServer) Client() *http.Client {
	target, _ := url.Parse(s.Server.URL)
	return &http.Client{Transport: &rewriteTransport{server: s, target: target, base: http.DefaultTransport}}
}

type rewriteTransport struct {
	server *ReleaseServer
	target *url.URL
	base   http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.server.mu.Lock()
	rt.server.requests = append(rt.server.requests, req.URL.String())
	rt.server.mu.Unlock()

	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return rt.base.RoundTrip(r)
}

// BuildZip writes files to a scratch directory and zips them with the
// archive manager. Regular files are written 0644 so callers can check that
// the executable bit is set after extraction.
func BuildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("Failed to create source directory: %v", err)
	}
	for name, content := range files {
		full := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}

	zipPath := filepath.Join(dir, "release.zip")
	if err := archive.NewManager().Create(context.Background(), src, zipPath); err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	data, err := os.ReadFile(zipPath)
	if err != nil {
		t.Fatalf("Failed to read archive: %v", err)
	}
	return data
}
