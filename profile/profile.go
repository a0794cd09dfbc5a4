// Package profile talks to the remote profile service: an ed25519
// challenge/response auth flow that yields a bearer token, and a
// key-value profile blob keyed by wallet address. A file-backed store
// provides the same contract for offline play.
package profile

import (
	"context"
	"errors"

	"github.com/etherealgames/nexuscore/engine/codec"
)

// Sentinel errors for the two failure classes callers branch on.
var (
	// ErrAuthRequired means the service rejected the bearer token even
	// after one re-authentication attempt.
	ErrAuthRequired = errors.New("profile service rejected credentials")

	// ErrRemoteRejected wraps any other non-success response. The save
	// failed but local state is intact.
	ErrRemoteRejected = errors.New("profile service rejected request")
)

// Snapshot is one stored profile: its display name and the flattened
// key-value payload.
type Snapshot struct {
	Name string
	Data codec.Bag
}

// Store loads and saves profile payloads by wallet address. Load
// returns (nil, nil) when no profile exists for the wallet; errors are
// reserved for transport and service failures.
type Store interface {
	Load(ctx context.Context, wallet string) (*Snapshot, error)
	Save(ctx context.Context, wallet string, pairs []codec.KV) error
}
