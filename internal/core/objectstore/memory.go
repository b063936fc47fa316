package objectstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memObject struct {
	data        []byte
	contentType string
}

// Memory is a process-local Store for development and tests.
type Memory struct {
	base string

	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemory(publicBase string) *Memory {
	if publicBase == "" {
		publicBase = "memory://objects"
	}
	return &Memory{base: publicBase, objects: map[string]memObject{}}
}

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = memObject{data: buf.Bytes(), contentType: contentType}
	m.mu.Unlock()
	return m.URL(key), nil
}

func (m *Memory) URL(key string) string { return joinURL(m.base, key) }

// Delete of a missing key succeeds, matching S3.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return o.data, o.contentType, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
