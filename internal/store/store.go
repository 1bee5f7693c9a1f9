// Package store keeps the local key-value snapshot of UI state.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// Storage keys.
const (
	KeyState        = "odyssey_state"
	KeyAudioEnabled = "audio_enabled"
	KeyTheme        = "theme"
)

var (
	ErrNotFound     = errors.New("store: no saved state")
	ErrCorruptState = errors.New("store: corrupt state")
)

// KV is the subset of *diskv.Diskv the store relies on.
type KV interface {
	Read(key string) ([]byte, error)
	Write(key string, val []byte) error
	Erase(key string) error
	Has(key string) bool
}

type Store struct {
	kv KV
}

// Open returns a store persisting under basePath, one file per key.
func Open(basePath string) *Store {
	return &Store{
		kv: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
	}
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{kv: &memKV{m: make(map[string][]byte)}}
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the snapshot. A missing snapshot is ErrNotFound; a blob that
// is not a JSON object wraps ErrCorruptState.
func (s *Store) Load() (Snapshot, error) {
	if !s.kv.Has(KeyState) {
		return Snapshot{}, ErrNotFound
	}
	raw, err := s.kv.Read(KeyState)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", KeyState, err)
	}
	return Decode(raw)
}

func (s *Store) Save(snap Snapshot) error {
	raw, err := snap.Encode()
	if err != nil {
		return err
	}
	if err := s.kv.Write(KeyState, raw); err != nil {
		return fmt.Errorf("write %s: %w", KeyState, err)
	}
	if snap.AudioEnabled != nil {
		if err := s.Set(KeyAudioEnabled, fmt.Sprint(*snap.AudioEnabled)); err != nil {
			return err
		}
	}
	if snap.Theme != "" {
		if err := s.Set(KeyTheme, snap.Theme); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value under key, or "" when it is absent or unreadable.
func (s *Store) Get(key string) string {
	if !s.kv.Has(key) {
		return ""
	}
	v, err := s.kv.Read(key)
	if err != nil {
		return ""
	}
	return string(v)
}

func (s *Store) Set(key, value string) error {
	if err := s.kv.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Reset erases every key the store writes.
func (s *Store) Reset() error {
	for _, k := range []string{KeyState, KeyAudioEnabled, KeyTheme} {
		if !s.kv.Has(k) {
			continue
		}
		if err := s.kv.Erase(k); err != nil {
			return fmt.Errorf("erase %s: %w", k, err)
		}
	}
	return nil
}

type memKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (k *memKV) Read(key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (k *memKV) Write(key string, val []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = append([]byte(nil), val...)
	return nil
}

func (k *memKV) Erase(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}

func (k *memKV) Has(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.m[key]
	return ok
}
