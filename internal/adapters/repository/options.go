package repository

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithCentroidRefit recomputes fallback centroids from every published corpus.
func WithCentroidRefit(enabled bool) Option {
	return func(s *SnapshotStore) {
		s.refit = enabled
	}
}
