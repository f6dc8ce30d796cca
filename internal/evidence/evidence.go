// Package evidence unifies cited passages from the tender and bid corpora
// into one role-tagged provenance model.
package evidence

// Role identifies which corpus a cited passage came from.
type Role string

const (
	RoleTender Role = "tender"
	RoleBid    Role = "bid"
)

// Entry is one cited passage in a review item's evidence list.
type Entry struct {
	Role      Role   `json:"role"`
	Source    string `json:"source"`
	PageStart int    `json:"page_start"`
	Quote     string `json:"quote"`
	ChunkID   string `json:"chunk_id,omitempty"`
}

// ID returns the entry's chunk identifier, falling back to its source.
func (e Entry) ID() string {
	if e.ChunkID != "" {
		return e.ChunkID
	}
	return e.Source
}

// Merge concatenates entry lists in order, dropping duplicates by
// (role, source) pair.
func Merge(lists ...[]Entry) []Entry {
	type key struct {
		role   Role
		source string
	}
	seen := make(map[key]struct{})
	var out []Entry
	for _, list := range lists {
		for _, e := range list {
			k := key{e.Role, e.Source}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// ChunkIDs returns the chunk identifiers of all entries with the given role,
// preserving order.
func ChunkIDs(entries []Entry, role Role) []string {
	var out []string
	for _, e := range entries {
		if e.Role == role {
			out = append(out, e.ID())
		}
	}
	return out
}

// HasRole reports whether any entry carries the given role.
func HasRole(entries []Entry, role Role) bool {
	for _, e := range entries {
		if e.Role == role {
			return true
		}
	}
	return false
}
