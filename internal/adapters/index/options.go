package index

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithPageSize sets the internal chunk size for full index scans.
func WithPageSize(size int) Option {
	return func(s *InMemoryStore) {
		if size > 0 {
			s.pageSize = size
		}
	}
}
