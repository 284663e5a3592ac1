package storage

import (
	"context"
	"maps"
	"net/url"
	"slices"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryObjectStorage keeps objects in process memory. Download URLs use
// the memory:// scheme and are only meaningful to tests and local runs.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]memoryObject)}
}

func (m *MemoryObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: slices.Clone(data), contentType: contentType}
	return nil
}

func (m *MemoryObjectStorage) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	u := url.URL{Scheme: "memory", Path: "/" + key}
	u.RawQuery = url.Values{"expires": {time.Now().Add(expiresIn).UTC().Format(time.RFC3339)}}.Encode()
	return u.String(), nil
}

func (m *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Object returns a copy of the stored bytes and content type
func (m *MemoryObjectStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return slices.Clone(obj.data), obj.contentType, true
}

// Keys returns the stored keys in sorted order
func (m *MemoryObjectStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.objects))
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)
