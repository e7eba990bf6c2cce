package pathmirror

import (
	"strings"
)

// exclusionSet holds directory names to skip during the walk. Matching is by
// basename and case-insensitive, so "node_modules" excludes the directory at
// any depth and any casing.
type exclusionSet map[string]struct{}

// makeExclusionSet builds the lookup set once before the walk starts; it is
// read-only afterwards and safe for concurrent use.
func makeExclusionSet(names []string) exclusionSet {
	set := make(exclusionSet, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}

// contains reports whether the given directory name is excluded.
func (es exclusionSet) contains(name string) bool {
	_, ok := es[strings.ToLower(name)]
	return ok
}
