// Package mediatest provides an in-memory object store for tests.
package mediatest

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
)

type Object struct {
	Data        []byte
	ContentType string
}

type Storage struct {
	mu      sync.Mutex
	objects map[string]Object

	// FailPut, when set, decides per key whether Put returns an error.
	FailPut func(key string) error
}

func NewStorage() *Storage {
	return &Storage{objects: make(map[string]Object)}
}

func (s *Storage) EnsureBucket(context.Context) error { return nil }

func (s *Storage) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	s.mu.Lock()
	fail := s.FailPut
	s.mu.Unlock()
	if fail != nil {
		if err := fail(key); err != nil {
			return err
		}
	}

	data, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("short body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Data: data, ContentType: contentType}
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Storage) Get(key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	return o, ok
}

func (s *Storage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PNG returns the smallest byte slice http.DetectContentType reports as image/png.
func PNG() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 24)...)
}

// JPEG returns bytes sniffed as image/jpeg.
func JPEG() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 28)...)
}

// GLB returns bytes with a binary glTF header.
func GLB() []byte {
	return append([]byte("glTF"), 2, 0, 0, 0, 20, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
}
