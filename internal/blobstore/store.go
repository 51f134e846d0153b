// Package blobstore keeps uploaded and converted documents.
package blobstore

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/maruel/natural"
)

// ErrNotFound is returned for unknown keys.
var ErrNotFound = errors.New("object not found")

// Object is a stored document.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Info describes an object without its content.
type Info struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists objects by key. Put overwrites.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Info, error)
	Close() error
}

// Memory is an in-memory store whose objects expire after a TTL.
type Memory struct {
	mu      sync.Mutex
	objects map[string]*Object
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a store. A ttl of zero keeps objects forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		objects: make(map[string]*Object),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Put(_ context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &Object{
		Key:         key,
		ContentType: contentType,
		Data:        slices.Clone(data),
		CreatedAt:   m.now(),
	}
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok || m.expired(obj) {
		return nil, ErrNotFound
	}
	cp := *obj
	return &cp, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) List(_ context.Context) ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, 0, len(m.objects))
	for _, obj := range m.objects {
		if m.expired(obj) {
			continue
		}
		out = append(out, Info{
			Key:         obj.Key,
			ContentType: obj.ContentType,
			Size:        int64(len(obj.Data)),
			CreatedAt:   obj.CreatedAt,
		})
	}
	sortInfos(out)
	return out, nil
}

// sortInfos orders listings by key with digit runs compared numerically, so
// "doc-9.pdf" lists before "doc-10.pdf".
func sortInfos(infos []Info) {
	sort.Slice(infos, func(i, j int) bool { return natural.Less(infos[i].Key, infos[j].Key) })
}

// Cleanup removes expired objects.
func (m *Memory) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, obj := range m.objects {
		if m.expired(obj) {
			delete(m.objects, key)
			n++
		}
	}
	return n
}

func (m *Memory) Close() error { return nil }

func (m *Memory) expired(obj *Object) bool {
	return m.ttl > 0 && m.now().Sub(obj.CreatedAt) > m.ttl
}
