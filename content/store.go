package content

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store serves the current profile. Reload swaps it atomically; a failed reload keeps
// the last good profile so a half-saved file never blanks the site.
type Store struct {
	mu        sync.RWMutex
	path      string
	profile   *Profile
	loadedAt  time.Time
	lastError error
	listeners []func(*Profile)
}

func NewStore(path string) *Store {
	s := &Store{path: path, profile: DefaultProfile()}
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Profile returns the current profile. Callers must not mutate it.
func (s *Store) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// OnChange registers fn to run after each successful reload.
func (s *Store) OnChange(fn func(*Profile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) Reload() error {
	profile, err := LoadProfile(s.path)

	s.mu.Lock()
	if err != nil {
		s.lastError = err
		s.mu.Unlock()
		zap.L().Warn("profile reload failed, keeping previous profile", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.profile = profile
	s.loadedAt = time.Now()
	s.lastError = nil
	listeners := append([]func(*Profile){}, s.listeners...)
	s.mu.Unlock()

	zap.L().Info("profile loaded", zap.String("path", s.path), zap.String("name", profile.Name))

	for _, fn := range listeners {
		fn(profile)
	}

	return nil
}

// Set replaces the profile directly. Used by tests and the seed command.
func (s *Store) Set(profile *Profile) {
	s.mu.Lock()
	s.profile = profile
	s.loadedAt = time.Now()
	listeners := append([]func(*Profile){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(profile)
	}
}
