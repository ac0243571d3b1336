// Package artifact defines the content-addressed crypto object types and
// the discovery contract shared between the graph engine (internal/cryptograph)
// and the scanner that feeds it (internal/discovery).
package artifact

import "fmt"

// SourceKind identifies where a Location points: an etcd key or a file on disk.
type SourceKind int

const (
	KindEtcd SourceKind = iota
	KindFile
)

func (k SourceKind) String() string {
	switch k {
	case KindEtcd:
		return "etcd"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Location is the logical address at which one artifact was observed: an
// etcd key plus JSON-path, or a filesystem path plus an embedded offset.
type Location struct {
	Kind    SourceKind
	Path    string
	SubPath string
}

func (l Location) String() string {
	if l.SubPath == "" {
		return fmt.Sprintf("%s:%s", l.Kind, l.Path)
	}
	return fmt.Sprintf("%s:%s#%s", l.Kind, l.Path, l.SubPath)
}

// Locations is a set of Location values. It grows monotonically during
// discovery ingestion and is never otherwise mutated.
type Locations map[Location]struct{}

// NewLocations builds a Locations set from zero or more locations.
func NewLocations(locs ...Location) Locations {
	l := make(Locations, len(locs))
	for _, loc := range locs {
		l[loc] = struct{}{}
	}
	return l
}

// Add inserts loc into the set. A no-op if already present.
func (l Locations) Add(loc Location) {
	l[loc] = struct{}{}
}

// Len returns the number of distinct locations.
func (l Locations) Len() int {
	return len(l)
}

// Slice returns the locations sorted by Kind, Path, SubPath — commit
// ordering within a record follows this order.
func (l Locations) Slice() []Location {
	out := make([]Location, 0, len(l))
	for loc := range l {
		out = append(out, loc)
	}
	sortLocations(out)
	return out
}

// String renders the set as a comma-separated, sorted list for diagnostics.
func (l Locations) String() string {
	slice := l.Slice()
	s := ""
	for i, loc := range slice {
		if i > 0 {
			s += ", "
		}
		s += loc.String()
	}
	return s
}

func sortLocations(locs []Location) {
	// Simple insertion sort: location sets are small (a handful of
	// observed sites per artifact), so O(n^2) is fine and keeps this
	// file free of a sort.Slice comparator closure per call.
	for i := 1; i < len(locs); i++ {
		for j := i; j > 0 && less(locs[j], locs[j-1]); j-- {
			locs[j], locs[j-1] = locs[j-1], locs[j]
		}
	}
}

func less(a, b Location) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.SubPath < b.SubPath
}
