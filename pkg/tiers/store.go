package tiers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	profileFile = "profile.json"
	digestFile  = "digest.json"
)

// Store persists the Profile and Rolling Digest as JSON files with an
// in-memory cache. External edits to the files are picked up through a
// filesystem watcher that drops the cached copy.
type Store struct {
	dir    string
	logger zerolog.Logger

	mu            sync.RWMutex
	profile       *Profile
	digest        *RollingDigest
	profileLoaded bool
	digestLoaded  bool

	// pending self-write events per file, so the store's own atomic
	// saves do not invalidate the cache they just refreshed
	selfWrites map[string]int

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore opens (creating if needed) the tier directory and starts
// watching it for external modifications.
func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("tier directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tier directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create tier watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch tier directory: %w", err)
	}

	s := &Store{
		dir:        dir,
		logger:     logger.With().Str("component", "tierstore").Logger(),
		selfWrites: make(map[string]int),
		watcher:    watcher,
		done:       make(chan struct{}),
	}
	go s.watchLoop()

	return s, nil
}

func (s *Store) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if name := filepath.Base(event.Name); name == profileFile || name == digestFile {
				s.handleFileEvent(name)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Msg("Tier watcher error")
		case <-s.done:
			return
		}
	}
}

// handleFileEvent drops the cached record for an externally modified
// file. Each atomic save leaves one pending self-write, which absorbs the
// single rename event that save produced; only events beyond that count
// as external edits.
func (s *Store) handleFileEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selfWrites[name] > 0 {
		s.selfWrites[name]--
		return
	}

	switch name {
	case profileFile:
		s.profileLoaded = false
		s.profile = nil
	case digestFile:
		s.digestLoaded = false
		s.digest = nil
	}
}

// Profile returns the cached profile, loading it from disk on first use.
// A missing file yields an empty zero-version profile.
func (s *Store) Profile() (*Profile, error) {
	s.mu.RLock()
	if s.profileLoaded {
		p := *s.profile
		s.mu.RUnlock()
		return &p, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileLoaded {
		p := *s.profile
		return &p, nil
	}

	var profile Profile
	if err := s.readJSON(profileFile, &profile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		profile = Profile{Status: StatusCurrent}
	}

	s.profile = &profile
	s.profileLoaded = true
	p := profile
	return &p, nil
}

// Digest returns the cached rolling digest, loading it from disk on
// first use. A missing file yields an empty zero-version digest.
func (s *Store) Digest() (*RollingDigest, error) {
	s.mu.RLock()
	if s.digestLoaded {
		d := *s.digest
		s.mu.RUnlock()
		return &d, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.digestLoaded {
		d := *s.digest
		return &d, nil
	}

	var digest RollingDigest
	if err := s.readJSON(digestFile, &digest); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		digest = RollingDigest{Status: StatusCurrent}
	}

	s.digest = &digest
	s.digestLoaded = true
	d := digest
	return &d, nil
}

// SaveProfile writes the profile through to disk and refreshes the cache
func (s *Store) SaveProfile(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(profileFile, p); err != nil {
		return err
	}
	cp := *p
	s.profile = &cp
	s.profileLoaded = true
	return nil
}

// SaveDigest writes the digest through to disk and refreshes the cache
func (s *Store) SaveDigest(d *RollingDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(digestFile, d); err != nil {
		return err
	}
	cd := *d
	s.digest = &cd
	s.digestLoaded = true
	return nil
}

// Flush rewrites both cached records to disk if they are loaded
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profileLoaded && s.profile != nil {
		if err := s.writeJSON(profileFile, s.profile); err != nil {
			return err
		}
	}
	if s.digestLoaded && s.digest != nil {
		if err := s.writeJSON(digestFile, s.digest); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the filesystem watcher
func (s *Store) Close() error {
	close(s.done)
	return s.watcher.Close()
}

func (s *Store) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	// Caller holds s.mu; the rename above will surface as one watcher event
	s.selfWrites[name]++
	return nil
}
