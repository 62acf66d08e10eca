package workspace

import (
	"context"
	"sync"

	"github.com/hferrand/inkstream/internal/models"
)

// MockClient is a scripted Client for tests. It records every call so
// tests can assert how many upstream fetches actually happened.
type MockClient struct {
	mu sync.Mutex

	Records    []models.RawRecord
	RecordsErr error
	Blocks     map[string]models.RawBlockTree
	BlocksErr  error

	// RecordsFunc, when set, overrides Records/RecordsErr.
	RecordsFunc func(workspaceURL string) ([]models.RawRecord, error)

	RecordCalls []string
	BlockCalls  []string
}

func NewMockClient() *MockClient {
	return &MockClient{Blocks: make(map[string]models.RawBlockTree)}
}

func (m *MockClient) FetchRecords(_ context.Context, workspaceURL string) ([]models.RawRecord, error) {
	m.mu.Lock()
	m.RecordCalls = append(m.RecordCalls, workspaceURL)
	fn := m.RecordsFunc
	recs, err := m.Records, m.RecordsErr
	m.mu.Unlock()

	if fn != nil {
		return fn(workspaceURL)
	}
	return recs, err
}

func (m *MockClient) FetchBlockTree(_ context.Context, id string) (models.RawBlockTree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BlockCalls = append(m.BlockCalls, id)
	if m.BlocksErr != nil {
		return models.RawBlockTree{}, m.BlocksErr
	}
	tree, ok := m.Blocks[id]
	if !ok {
		return models.RawBlockTree{}, ErrNotFound
	}
	return tree, nil
}

// FetchCount returns how many record fetches were issued.
func (m *MockClient) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordCalls)
}
