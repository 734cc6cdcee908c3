package platform

import (
	"context"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTER CONTRACT
// One implementation per external platform. Adding a platform means
// registering a new Adapter, not branching inside the sync orchestrator.
// ══════════════════════════════════════════════════════════════════════════════

// Adapter fetches a handle's activity from one external platform.
type Adapter interface {
	// Name returns the canonical platform name this adapter serves.
	Name() Name

	// Fetch pulls and normalizes the handle's activity.
	// Failure kinds, matched with errors.Is against shared sentinels:
	//   - shared.ErrHandleNotFound: the handle does not exist remotely
	//   - shared.ErrRateLimited:    the remote throttled us
	//   - shared.ErrTransient:      network or remote-side failure, retryable
	Fetch(ctx context.Context, handle Handle) (*RawActivity, error)
}

// Registry resolves adapters by platform name.
type Registry interface {
	// Resolve returns the adapter for the given name.
	// Returns shared.ErrUnsupportedPlatform (carrying the name) when no
	// adapter is registered; it must not touch the network to decide that.
	Resolve(name Name) (Adapter, error)
}

// Detail is the full normalized fetch result for platforms that can expose
// per-problem and per-contest records alongside the snapshot metrics.
type Detail struct {
	// Activity is the snapshot used by the sync engine.
	Activity RawActivity

	// Problems are the distinct solved problems, StudentID left empty for
	// the caller to fill in.
	Problems []activity.Problem

	// Contests are the contest results, StudentID left empty likewise.
	Contests []activity.Contest
}

// DetailFetcher is an optional adapter capability. Adapters that implement it
// let the sync engine persist analytics records in the same pass; the sync
// engine falls back to plain Fetch when the capability is absent.
type DetailFetcher interface {
	// FetchDetail pulls the handle's activity together with the normalized
	// problem and contest records. Failure kinds match Fetch.
	FetchDetail(ctx context.Context, handle Handle) (*Detail, error)
}
