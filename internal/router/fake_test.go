package router

import (
	"context"
	"sync"
)

// fakeRowStore is an in-memory stand-in for store.RowStore, recording every
// call so tests can assert on dispatch side effects without a database.
type fakeRowStore struct {
	mu       sync.Mutex
	inserted []any
	upserted []any
}

func (f *fakeRowStore) Insert(ctx context.Context, row any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, row)
	return nil
}

func (f *fakeRowStore) Upsert(ctx context.Context, row any, conflictColumns []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, row)
	return nil
}

func (f *fakeRowStore) Update(ctx context.Context, row any, id any, updates map[string]any) error {
	return nil
}

func (f *fakeRowStore) Select(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

type fakeObjectStore struct {
	uploadedKey string
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.uploadedKey = key
	return "https://media.test/" + key, nil
}

func (f *fakeObjectStore) GetPublicURL(ctx context.Context, key string) (string, error) {
	return "https://media.test/" + key, nil
}
