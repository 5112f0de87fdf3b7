package build

import "suimu/internal/music"

// FailureMemo remembers sources whose download failed during one run. It is
// not safe for concurrent use; guard it with a mutex if Run is parallelised.
type FailureMemo struct {
	failed map[music.SourceKey]struct{}
}

// NewFailureMemo returns an empty memo.
func NewFailureMemo() *FailureMemo {
	return &FailureMemo{failed: make(map[music.SourceKey]struct{})}
}

// Has reports whether key already failed to download.
func (m *FailureMemo) Has(key music.SourceKey) bool {
	_, ok := m.failed[key]
	return ok
}

// Add records a failed download.
func (m *FailureMemo) Add(key music.SourceKey) {
	m.failed[key] = struct{}{}
}

// Len returns the number of remembered sources.
func (m *FailureMemo) Len() int {
	return len(m.failed)
}
