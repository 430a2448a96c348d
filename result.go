package directoryservices

import (
	"github.com/go-ldap/ldap/v3"
)

// SearchResult is one entry of a search response: a path plus the
// requested properties, copied out of the response verbatim.
type SearchResult struct {
	path       string
	properties *PropertyCollection
	parent     *DirectoryEntry
}

// newSearchResult adapts one response entry, addressing it through the
// same server segment as the search root.
func newSearchResult(root *DirectoryEntry, rootPath *adsPath, entry *ldap.Entry) *SearchResult {
	return &SearchResult{
		path:       rootPath.withDN(entry.DN),
		properties: newPropertyCollection(entry),
		parent:     root,
	}
}

// Path returns the directory path of the found entry.
func (r *SearchResult) Path() string {
	return r.path
}

// Properties returns the properties loaded by the search. The set is
// a snapshot of the response; it never goes back to the directory.
func (r *SearchResult) Properties() *PropertyCollection {
	return r.properties
}

// DirectoryEntry materializes a full entry for the result, inheriting
// the search root's credentials, authentication type, and connection
// settings. The entry binds lazily on first use.
func (r *SearchResult) DirectoryEntry() *DirectoryEntry {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	return r.parent.deriveLocked(r.path)
}

// SearchResultCollection is the full result set of one search.
type SearchResultCollection []*SearchResult

// Count returns the number of results.
func (c SearchResultCollection) Count() int {
	return len(c)
}
