// Package repository holds the historical corpus as immutable snapshots.
//
// Publishing builds a complete new snapshot and swaps it in atomically, so
// readers that already hold a snapshot keep a consistent view while a newer
// corpus is installed.
package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/pkg/metrics"
)

// Store provides access to the current corpus snapshot.
type Store interface {
	// Current returns the latest published snapshot or ErrNoSnapshot.
	Current(ctx context.Context) (*Snapshot, error)
	// Publish validates and classifies profiles into a new snapshot and makes
	// it current.
	Publish(ctx context.Context, profiles []model.PlayerProfile) (*Snapshot, error)
}

// Snapshot is an immutable, classified corpus. Callers must not modify the
// slices or profiles it returns.
type Snapshot struct {
	version     string
	publishedAt time.Time
	entries     []archetype.Member
	byID        map[string]int
	classifier  *archetype.Classifier
}

// Version returns the unique id assigned at publish time.
func (s *Snapshot) Version() string { return s.version }

// PublishedAt returns the publish time.
func (s *Snapshot) PublishedAt() time.Time { return s.publishedAt }

// Len returns the number of profiles.
func (s *Snapshot) Len() int { return len(s.entries) }

// Entries returns the classified profiles in publish order.
func (s *Snapshot) Entries() []archetype.Member { return s.entries }

// Get returns the entry with id.
func (s *Snapshot) Get(id string) (archetype.Member, bool) {
	i, ok := s.byID[id]
	if !ok {
		return archetype.Member{}, false
	}
	return s.entries[i], true
}

// Assignments returns every entry's assignment in publish order.
func (s *Snapshot) Assignments() []archetype.Assignment {
	out := make([]archetype.Assignment, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Assignment
	}
	return out
}

// Historical returns the number of entries with a known outcome.
func (s *Snapshot) Historical() int {
	var n int
	for _, e := range s.entries {
		if e.Profile.Historical() {
			n++
		}
	}
	return n
}

// Classifier returns the classifier prospects must be assigned with to be
// compared against this snapshot. It carries refit centroids when enabled.
func (s *Snapshot) Classifier() *archetype.Classifier { return s.classifier }

// SnapshotStore is the in-memory Store.
type SnapshotStore struct {
	classifier *archetype.Classifier
	refit      bool

	// publishMu serialises publishers; readers never lock.
	publishMu sync.Mutex
	snapshot  atomic.Pointer[Snapshot]
}

// NewSnapshotStore creates an empty store that classifies with c.
func NewSnapshotStore(c *archetype.Classifier, opts ...Option) *SnapshotStore {
	s := &SnapshotStore{classifier: c}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the latest snapshot.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Publish builds a snapshot from profiles. Profiles are copied, validated and
// classified; with refit enabled the fallback centroids are recomputed from
// the rule-matched entries and every entry is classified again with them.
func (s *SnapshotStore) Publish(ctx context.Context, profiles []model.PlayerProfile) (*Snapshot, error) {
	start := time.Now()
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	snap := &Snapshot{
		entries:    make([]archetype.Member, 0, len(profiles)),
		byID:       make(map[string]int, len(profiles)),
		classifier: s.classifier,
	}
	for i := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("publish cancelled: %w", err)
		}
		p := clone(&profiles[i])
		if err := p.Validate(); err != nil {
			metrics.RecordErrorByComponent("repository", "invalid_profile")
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if _, dup := snap.byID[p.ID]; dup {
			metrics.RecordErrorByComponent("repository", "duplicate_id")
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		snap.byID[p.ID] = len(snap.entries)
		snap.entries = append(snap.entries, archetype.Member{Profile: p, Assignment: s.classifier.Classify(p)})
	}

	if s.refit {
		cs := archetype.FitCentroids(s.classifier.Rules(), snap.entries)
		snap.classifier = s.classifier.Refit(cs)
		for i := range snap.entries {
			snap.entries[i].Assignment = snap.classifier.Classify(snap.entries[i].Profile)
		}
	}

	snap.version = uuid.NewString()
	snap.publishedAt = time.Now().UTC()
	s.snapshot.Store(snap)
	metrics.RecordSnapshotPublish(snap.Len(), time.Since(start))
	return snap, nil
}

func clone(p *model.PlayerProfile) *model.PlayerProfile {
	cp := *p
	cp.Stats = p.Stats.Clone()
	if p.Draft != nil {
		d := *p.Draft
		cp.Draft = &d
	}
	if p.Outcome != nil {
		t := *p.Outcome
		cp.Outcome = &t
	}
	return &cp
}
