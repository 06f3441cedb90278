package download

import (
	"context"
	"net/url"
)

// Manager defines the interface for downloading one remote file into a local directory.
type Manager interface {
	// Fetch downloads a single item to opts.Dir/item.Filename and returns the local path.
	// The request is attempted exactly once.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item represents one remote resource to download.
type Item struct {
	URL      *url.URL // source URL to download
	Filename string   // preferred filename; if empty, the last URL path segment is used
}

// Options control where a download lands.
type Options struct {
	Dir string // destination directory, created if missing
}
