package models

import "path/filepath"

// SeenFiles tracks the files already visited during one import walk.
// Keys are absolute, cleaned paths so different spellings of one file collide.
type SeenFiles map[string]struct{}

func NewSeenFiles() SeenFiles {
	return make(SeenFiles)
}

func seenKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func (s SeenFiles) Has(path string) bool {
	_, ok := s[seenKey(path)]
	return ok
}

func (s SeenFiles) Add(path string) {
	s[seenKey(path)] = struct{}{}
}
