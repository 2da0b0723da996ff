package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/descriptor"
)

// SelectorKind tags the variant of a parsed selector, per the tagged-sum
// design (spec.md §9): ByCoordinate/ByArtifact match on identity, ByFile/
// ByDirectory match on the descriptor's source location.
type SelectorKind int

const (
	ByArtifact SelectorKind = iota
	ByCoordinate
	ByFile
	ByDirectory
)

// Selector is one parsed project-selection expression, in one of four
// shapes: "groupId:artifactId", ":artifactId", a file path, or a
// directory path.
type Selector struct {
	Kind       SelectorKind
	GroupID    string
	ArtifactID string
	Path       string
}

// ParseSelector interprets one selector string against baseDirectory,
// following the precedence spec.md §4.C requires: a colon splits it into
// a coordinate selector; otherwise it is resolved as a path.
func ParseSelector(s, baseDirectory string) (Selector, error) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		groupID := s[:idx]
		artifactID := s[idx+1:]
		if strings.IndexByte(artifactID, ':') >= 0 {
			return Selector{}, fmt.Errorf("invalid selector %q: contains more than one ':'", s)
		}
		if artifactID == "" {
			return Selector{}, fmt.Errorf("invalid selector %q: artifactId missing", s)
		}
		if groupID == "" {
			return Selector{Kind: ByArtifact, ArtifactID: artifactID}, nil
		}
		return Selector{Kind: ByCoordinate, GroupID: groupID, ArtifactID: artifactID}, nil
	}

	path := filepath.Clean(filepath.Join(baseDirectory, s))
	info, err := os.Stat(path)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector %q: no file or directory at %s", s, path)
	}
	if info.IsDir() {
		return Selector{Kind: ByDirectory, Path: path}, nil
	}
	return Selector{Kind: ByFile, Path: path}, nil
}

// Matches reports whether sel selects d, dispatching on sel.Kind per the
// tagged-sum design (spec.md §9): a uniform switch rather than
// interface-based subtype polymorphism.
func (sel Selector) Matches(c coordinate.Coordinate, d *descriptor.Raw) bool {
	switch sel.Kind {
	case ByArtifact:
		return c.ArtifactID == sel.ArtifactID
	case ByCoordinate:
		return c.ArtifactID == sel.ArtifactID && c.GroupID == sel.GroupID
	case ByFile:
		return d.SourceFile == sel.Path
	case ByDirectory:
		return filepath.Dir(d.SourceFile) == sel.Path
	default:
		return false
	}
}

// Select applies every selector to the index (raw descriptors only, per
// spec.md §9's open-question resolution: selectors are never evaluated
// against interpolated descriptors) and returns the union of matches.
func Select(idx *Index, selectors []Selector) map[coordinate.Coordinate]*descriptor.Raw {
	selected := make(map[coordinate.Coordinate]*descriptor.Raw)
	for _, c := range idx.Coordinates() {
		d, _ := idx.Get(c)
		for _, sel := range selectors {
			if sel.Matches(c, d) {
				selected[c] = d
				break
			}
		}
	}
	return selected
}
