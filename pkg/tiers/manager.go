package tiers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/oracle"
)

// Merge calls run deterministic; compression allows slight rephrasing.
const (
	mergeTemperature    = 0.0
	compressTemperature = 0.3

	// digestMaxTokens leaves generation room for an 8000 word digest
	digestMaxTokens = 12000
)

// ErrOverCeiling is returned when a manual override exceeds the tier's
// word ceiling. The oracle-merge paths treat the ceiling as a target
// instead and never return this.
var ErrOverCeiling = errors.New("tiers: text exceeds word ceiling")

// Manager drives the bounded update cycle of both tiers. Each tier is
// updated by at most one goroutine at a time; oracle calls run outside
// the store lock so queries are never blocked on generation latency.
type Manager struct {
	store     *Store
	compactor oracle.CompactionOracle
	archive   *archive.Store
	cfg       Config
	logger    zerolog.Logger

	profileMu sync.Mutex
	digestMu  sync.Mutex
}

// NewManager wires the tier manager to its store, archive and oracle
func NewManager(store *Store, compactor oracle.CompactionOracle, archiveStore *archive.Store, cfg Config, logger zerolog.Logger) *Manager {
	if cfg.MaxOracleCalls <= 0 {
		cfg = DefaultConfig()
	}
	return &Manager{
		store:     store,
		compactor: compactor,
		archive:   archiveStore,
		cfg:       cfg,
		logger:    logger.With().Str("component", "tiers").Logger(),
	}
}

// Profile returns the current profile record
func (m *Manager) Profile() (*Profile, error) {
	return m.store.Profile()
}

// Digest returns the current rolling digest record
func (m *Manager) Digest() (*RollingDigest, error) {
	return m.store.Digest()
}

// OverrideProfile replaces the profile text directly, bypassing the
// oracle. Unlike the merge path, the ceiling is a hard precondition here.
func (m *Manager) OverrideProfile(text string) (*Profile, error) {
	words := archive.CountWords(text)
	if words > m.cfg.ProfileCeiling {
		return nil, fmt.Errorf("profile override is %d words, ceiling is %d: %w", words, m.cfg.ProfileCeiling, ErrOverCeiling)
	}

	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	current, err := m.store.Profile()
	if err != nil {
		return nil, err
	}

	updated := &Profile{
		Version:     current.Version + 1,
		Status:      StatusCurrent,
		LastUpdated: time.Now().UTC(),
		WordCount:   words,
		Text:        text,
	}
	if err := m.store.SaveProfile(updated); err != nil {
		return nil, err
	}

	m.logger.Info().Int("version", updated.Version).Int("words", words).Msg("Profile overridden")
	return updated, nil
}

// OverrideDigest replaces the rolling digest text directly, bypassing
// the oracle. The ceiling is a hard precondition here.
func (m *Manager) OverrideDigest(text string) (*RollingDigest, error) {
	words := archive.CountWords(text)
	if words > m.cfg.DigestCeiling {
		return nil, fmt.Errorf("digest override is %d words, ceiling is %d: %w", words, m.cfg.DigestCeiling, ErrOverCeiling)
	}

	m.digestMu.Lock()
	defer m.digestMu.Unlock()

	current, err := m.store.Digest()
	if err != nil {
		return nil, err
	}

	updated := &RollingDigest{
		Version:        current.Version + 1,
		Status:         StatusCurrent,
		LastUpdated:    time.Now().UTC(),
		WordCount:      words,
		Text:           text,
		LastSourceDate: current.LastSourceDate,
	}
	if err := m.store.SaveDigest(updated); err != nil {
		return nil, err
	}

	m.logger.Info().Int("version", updated.Version).Int("words", words).Msg("Rolling digest overridden")
	return updated, nil
}

// MarkStale flags both tiers as having unmerged archive material
func (m *Manager) MarkStale() error {
	m.profileMu.Lock()
	profile, err := m.store.Profile()
	if err == nil && profile.Status != StatusStale {
		profile.Status = StatusStale
		err = m.store.SaveProfile(profile)
	}
	m.profileMu.Unlock()
	if err != nil {
		return err
	}

	m.digestMu.Lock()
	defer m.digestMu.Unlock()
	digest, err := m.store.Digest()
	if err != nil {
		return err
	}
	if digest.Status != StatusStale {
		digest.Status = StatusStale
		return m.store.SaveDigest(digest)
	}
	return nil
}
