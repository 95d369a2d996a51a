package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/maplewoodlane/engine/pkg/content"
	"github.com/maplewoodlane/engine/pkg/game"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for session persistence and content access
type Storage interface {
	HealthChecker
	Closer

	// SaveSession saves a session snapshot under its id
	SaveSession(ctx context.Context, s *game.SavedSession) error

	// LoadSession retrieves a session by id.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*game.SavedSession, error)

	// DeleteSession removes a session by id
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// ListPacks maps pack names to filenames
	ListPacks(ctx context.Context) (map[string]string, error)

	// GetPack loads a content pack by filename
	GetPack(ctx context.Context, filename string) (*content.Pack, error)
}
