package directoryservices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ldapx "github.com/dirshim/directoryservices/internal/ldap"
)

// ErrNotFound is returned when a lookup matches no directory entry.
var ErrNotFound = errors.New("directoryservices: no matching directory entry")

// SearchScope defines how far below the search root a search reaches.
type SearchScope int

const (
	// ScopeBase matches only the search root itself.
	ScopeBase SearchScope = iota
	// ScopeOneLevel matches the immediate children of the search root.
	ScopeOneLevel
	// ScopeSubtree matches the root and everything below it.
	ScopeSubtree
)

// Valid reports whether the scope is one of the three defined values.
func (s SearchScope) Valid() bool {
	return s >= ScopeBase && s <= ScopeSubtree
}

// String returns the name of the scope.
func (s SearchScope) String() string {
	switch s {
	case ScopeBase:
		return "base"
	case ScopeOneLevel:
		return "onelevel"
	case ScopeSubtree:
		return "subtree"
	default:
		return "unknown"
	}
}

// dnAttribute identifies every result entry; it is always requested.
const dnAttribute = "distinguishedName"

// defaultFilter matches every entry.
const defaultFilter = "(objectClass=*)"

// DirectorySearcher runs filtered searches below a root entry. Each
// find operation builds exactly one request and sends it synchronously
// over the root's connection.
type DirectorySearcher struct {
	root             *DirectoryEntry
	filter           string
	scope            SearchScope
	propertiesToLoad []string
	sizeLimit        int
	serverTimeLimit  time.Duration
}

// NewDirectorySearcher creates a searcher rooted at root, matching
// every entry in the whole subtree until narrowed down.
func NewDirectorySearcher(root *DirectoryEntry) *DirectorySearcher {
	return &DirectorySearcher{
		root:   root,
		filter: defaultFilter,
		scope:  ScopeSubtree,
	}
}

// SearchRoot returns the entry searches start from.
func (s *DirectorySearcher) SearchRoot() *DirectoryEntry {
	return s.root
}

// Filter returns the current search filter.
func (s *DirectorySearcher) Filter() string {
	return s.filter
}

// SetFilter sets the search filter. An empty filter restores the
// match-everything default.
func (s *DirectorySearcher) SetFilter(filter string) {
	if filter == "" {
		filter = defaultFilter
	}
	s.filter = filter
}

// SearchScope returns the current scope.
func (s *DirectorySearcher) SearchScope() SearchScope {
	return s.scope
}

// SetSearchScope sets the search breadth. Values outside the defined
// range are rejected.
func (s *DirectorySearcher) SetSearchScope(scope SearchScope) error {
	if !scope.Valid() {
		return fmt.Errorf("invalid search scope: %d", int(scope))
	}
	s.scope = scope
	return nil
}

// PropertiesToLoad returns the property names requested for results.
func (s *DirectorySearcher) PropertiesToLoad() []string {
	names := make([]string, len(s.propertiesToLoad))
	copy(names, s.propertiesToLoad)
	return names
}

// SetPropertiesToLoad sets the properties requested for each result.
// An empty list requests every attribute.
func (s *DirectorySearcher) SetPropertiesToLoad(names ...string) {
	s.propertiesToLoad = make([]string, len(names))
	copy(s.propertiesToLoad, names)
}

// AddPropertyToLoad appends one property name to the request list.
func (s *DirectorySearcher) AddPropertyToLoad(name string) {
	s.propertiesToLoad = append(s.propertiesToLoad, name)
}

// SizeLimit returns the result count cap; zero means unlimited.
func (s *DirectorySearcher) SizeLimit() int {
	return s.sizeLimit
}

// SetSizeLimit caps the number of results. Negative values are
// rejected; zero removes the cap.
func (s *DirectorySearcher) SetSizeLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("size limit cannot be negative: %d", limit)
	}
	s.sizeLimit = limit
	return nil
}

// ServerTimeLimit returns the server-side time limit for searches.
func (s *DirectorySearcher) ServerTimeLimit() time.Duration {
	return s.serverTimeLimit
}

// SetServerTimeLimit sets the server-side time limit; zero leaves the
// limit to the server.
func (s *DirectorySearcher) SetServerTimeLimit(limit time.Duration) {
	s.serverTimeLimit = limit
}

// FindOne returns the first matching entry, or ErrNotFound when
// nothing matches.
func (s *DirectorySearcher) FindOne(ctx context.Context) (*SearchResult, error) {
	results, err := s.execute(ctx, 1)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, ErrNotFound
	}

	return results[0], nil
}

// FindAll returns every matching entry, capped by the size limit when
// one is set.
func (s *DirectorySearcher) FindAll(ctx context.Context) (SearchResultCollection, error) {
	return s.execute(ctx, s.sizeLimit)
}

// execute sends the one search request and adapts the response
// entries into results.
func (s *DirectorySearcher) execute(ctx context.Context, limit int) (SearchResultCollection, error) {
	if s.root == nil {
		return nil, fmt.Errorf("searcher has no search root")
	}

	if s.sizeLimit > 0 && (limit == 0 || limit > s.sizeLimit) {
		limit = s.sizeLimit
	}

	rootPath, err := s.root.pathInfo()
	if err != nil {
		return nil, err
	}

	result, err := s.root.search(ctx, &ldapx.SearchRequest{
		BaseDN:     rootPath.dn,
		Scope:      ldapx.SearchScope(s.scope),
		Filter:     s.filter,
		Attributes: s.requestAttributes(),
		SizeLimit:  limit,
		TimeLimit:  s.serverTimeLimit,
	})
	if err != nil {
		return nil, err
	}

	entries := result.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	results := make(SearchResultCollection, 0, len(entries))
	for _, entry := range entries {
		results = append(results, newSearchResult(s.root, rootPath, entry))
	}

	return results, nil
}

// requestAttributes returns the attribute list for the wire request:
// everything when no properties were chosen, otherwise the chosen set
// with the identifying DN attribute appended.
func (s *DirectorySearcher) requestAttributes() []string {
	if len(s.propertiesToLoad) == 0 {
		return nil
	}

	attrs := make([]string, len(s.propertiesToLoad))
	copy(attrs, s.propertiesToLoad)

	for _, name := range attrs {
		if strings.EqualFold(name, dnAttribute) {
			return attrs
		}
	}

	return append(attrs, dnAttribute)
}
