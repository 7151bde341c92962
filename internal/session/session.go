// Package session holds per-visitor state as a JSON object of named values.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Store persists sessions by id. Load returns database.ErrSessionNotFound for
// unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type Session struct {
	ID string

	values   map[string]json.RawMessage
	modified bool
}

func New(id string) *Session {
	return &Session{ID: id, values: make(map[string]json.RawMessage)}
}

// Decode rebuilds a session from its stored blob. An empty blob yields an
// empty session.
func Decode(id string, data []byte) (*Session, error) {
	s := New(id)
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if s.values == nil {
		s.values = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Encode serialises the session. Each value keeps its own byte layout.
func (s *Session) Encode() ([]byte, error) {
	data, err := json.Marshal(s.values)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

// Get decodes the value under key into dst. It reports false when the key is
// absent or holds null.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("session key %q: %w", key, err)
	}
	return true, nil
}

// Raw returns the undecoded value under key.
func (s *Session) Raw(key string) (json.RawMessage, bool) {
	raw, ok := s.values[key]
	return raw, ok
}

func (s *Session) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session key %q: %w", key, err)
	}
	s.values[key] = data
	s.modified = true
	return nil
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.modified = true
	}
}

func (s *Session) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

func (s *Session) Len() int {
	return len(s.values)
}

// Modified reports whether the session must be written back.
func (s *Session) Modified() bool {
	return s.modified
}

func (s *Session) MarkModified() {
	s.modified = true
}

// MarkSaved resets the modified flag after a successful Save.
func (s *Session) MarkSaved() {
	s.modified = false
}
