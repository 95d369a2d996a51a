package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/maplewoodlane/engine/pkg/content"
	"github.com/maplewoodlane/engine/pkg/game"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	sessions  map[uuid.UUID]*game.SavedSession
	packs     map[string]*content.Pack // filename -> pack
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*game.SavedSession),
		packs:    make(map[string]*content.Pack),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.pingError = err
}

// SetSaveError configures the mock to fail on session saves
func (m *MockStorage) SetSaveError(err error) {
	m.saveError = err
}

// AddPack registers a content pack under a filename
func (m *MockStorage) AddPack(filename string, p *content.Pack) {
	m.packs[filename] = p
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession mocks saving a session
func (m *MockStorage) SaveSession(ctx context.Context, s *game.SavedSession) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[s.ID] = s
	return nil
}

// LoadSession mocks loading a session
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*game.SavedSession, error) {
	s, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return s, nil
}

// DeleteSession mocks deleting a session
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

// ListPacks mocks pack listing
func (m *MockStorage) ListPacks(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.packs))
	for filename, p := range m.packs {
		out[p.Name] = filename
	}
	return out, nil
}

// GetPack mocks pack loading
func (m *MockStorage) GetPack(ctx context.Context, filename string) (*content.Pack, error) {
	p, ok := m.packs[filename]
	if !ok {
		return nil, errors.New("pack not found: " + filename)
	}
	return p, nil
}
