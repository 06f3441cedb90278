//go:generate mockgen -destination=./mocks/protoc.go . Downloader,Extractor

package protoc

import (
	"context"

	"github.com/glorpus-work/protoc-fetcher/pkg/download"
)

// Downloader fetches the release archive. download.ManagerImpl satisfies it.
type Downloader interface {
	Fetch(ctx context.Context, item download.Item, opts download.Options) (string, error)
}

// Extractor unpacks the release archive. archive.Manager satisfies it.
type Extractor interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// Phase names a step of a fetch, reported through Hooks.
type Phase string

const (
	PhaseResolved       Phase = "resolved"
	PhaseCacheHit       Phase = "cache-hit"
	PhaseDownloading    Phase = "downloading"
	PhaseExtracting     Phase = "extracting"
	PhaseVerifying      Phase = "verifying"
	PhasePermissionsSet Phase = "permissions-set"
	PhaseDone           Phase = "done"
	PhaseFailed         Phase = "failed"
)

// Event represents a simple progress notification.
type Event struct {
	Phase   Phase
	Version string
	Msg     string
}

// Hooks carries callbacks for progress events. The fetcher itself never logs.
type Hooks struct {
	OnEvent func(Event)
}
