// Package pathresolve reconstructs full directory paths from one
// complete pass over the MFT's parent/name relationships, memoizing
// recursive lookups and refusing to follow cyclic parent chains a
// corrupted volume can induce.
package pathresolve

import "github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"

// Entry is one (entry number, best filename, parent entry number) tuple
// contributed by an MFT pass.
type Entry struct {
	EntryNumber uint64
	Name        string
	ParentEntry uint64
}

// Cache is an immutable, fully-resolved entry-number-to-path map built
// once from a slice of Entry. Its fields are unexported and never
// mutated after NewCache returns; callers only ever read through Path.
type Cache struct {
	paths map[uint64]string
}

// NewCache resolves every entry's path in one pass: entry 5 is the root
// (`\`), an entry whose parent is the root or itself gets `\name`, and
// everything else is `parent_path + "\" + name`. A self-parent or
// missing-parent entry falls back to `\name` rather than propagating an
// empty path. In a cyclic parent chain the lookup that would re-enter the
// cycle yields no parent path, and the entry waiting on it falls back to
// `\name`, so no resolved path is empty.
func NewCache(entries []Entry) *Cache {
	names := make(map[uint64]string, len(entries))
	parents := make(map[uint64]uint64, len(entries))
	for _, e := range entries {
		names[e.EntryNumber] = e.Name
		parents[e.EntryNumber] = e.ParentEntry
	}

	c := &Cache{paths: make(map[uint64]string, len(entries))}
	// Resolve in input order (ascending entry number, since that is the
	// order an MFT pass produces them): when a cycle cannot be rooted to
	// a real path, which member resolves "first" and which short-circuits
	// against the other's in-progress visited set is order-dependent, and
	// this preserves that exact dependency rather than picking an
	// arbitrary map-iteration order.
	for _, e := range entries {
		resolve(e.EntryNumber, names, parents, c.paths, make(map[uint64]bool))
	}
	return c
}

// resolve computes and memoizes entryNum's path, using visited to guard
// against following the same entry twice within one top-level lookup.
func resolve(entryNum uint64, names map[uint64]string, parents map[uint64]uint64, paths map[uint64]string, visited map[uint64]bool) string {
	if p, ok := paths[entryNum]; ok {
		return p
	}
	name, ok := names[entryNum]
	if !ok {
		return ""
	}
	if visited[entryNum] {
		return ""
	}
	visited[entryNum] = true

	var path string
	parent := parents[entryNum]
	switch {
	case entryNum == uint64(ntfstime.EntryRoot):
		path = `\`
	case parent == uint64(ntfstime.EntryRoot) || parent == entryNum:
		path = `\` + name
	default:
		if parentPath := resolve(parent, names, parents, paths, visited); parentPath != "" {
			path = parentPath + `\` + name
		} else {
			path = `\` + name
		}
	}

	paths[entryNum] = path
	return path
}

// Path returns entryNumber's resolved path, or "" if entryNumber was
// never seen during the build pass.
func (c *Cache) Path(entryNumber uint64) string {
	return c.paths[entryNumber]
}
