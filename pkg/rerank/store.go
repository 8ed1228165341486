package rerank

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/utils"
)

// Store lazily loads the artifact at a path and reloads it only when the
// file's modification time or size changes. A file that fails to decode is
// remembered and skipped until it changes again.
type Store struct {
	path string

	mu     sync.Mutex
	model  *Model
	stamp  utils.FileStamp
	loaded bool
	failed *utils.FileStamp
}

// NewStore returns a store for path. An empty path never loads.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact path.
func (s *Store) Path() string { return s.path }

// Load returns the current artifact, or nil when it is absent or
// malformed.
func (s *Store) Load() Artifact {
	if m := s.load(); m != nil {
		return m
	}
	return nil
}

func (s *Store) load() *Model {
	if s == nil || s.path == "" {
		return nil
	}
	stamp, ok := utils.StatFile(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		s.model, s.loaded, s.failed = nil, false, nil
		return nil
	}
	if s.loaded && s.stamp.Same(stamp) {
		return s.model
	}
	if s.failed != nil && s.failed.Same(stamp) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		log.Warnf("Failed to read reranker artifact %s: %v", s.path, err)
		s.markFailed(stamp)
		return nil
	}
	m, err := Decode(data)
	if err != nil {
		log.Warnf("Ignoring reranker artifact %s: %v", s.path, err)
		s.markFailed(stamp)
		return nil
	}
	s.model, s.stamp, s.loaded, s.failed = m, stamp, true, nil
	log.Debugf("Loaded reranker artifact %s (%d labels, %d features)",
		s.path, len(m.file.Labels), len(m.file.Vectorizer.IDF))
	return m
}

func (s *Store) markFailed(stamp utils.FileStamp) {
	s.model, s.loaded = nil, false
	s.failed = &stamp
}

// Available reports whether a usable artifact is loaded right now.
func (s *Store) Available() bool {
	return s.load() != nil
}
