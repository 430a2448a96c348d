package ldap

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// Config holds connection and authentication settings for a directory
// server. Zero values are filled in by Normalize using the struct tags.
type Config struct {
	// Connection settings
	URL     string        // Explicit ldap:// or ldaps:// URL (overrides Host/Port)
	Host    string        // Server hostname
	Port    int           `default:"636"` // Server port
	UseTLS  bool          // Connect over TLS; no defaults tag, false must survive
	Timeout time.Duration `default:"30s"` // Dial and per-operation timeout

	// Authentication settings
	Username string // Bind DN, UPN, or SAM format
	Password string // Password for simple bind

	// Kerberos settings (used by GSSAPI binds)
	KerberosRealm  string // Realm, derived from Username when it contains @
	KerberosKeytab string // Path to keytab file
	KerberosCCache string // Path to credential cache
	KerberosConfig string // Path to krb5.conf
	KerberosSPN    string // Explicit service principal override

	// TLS settings
	TLSConfig *tls.Config

	// Logger receives operation-level debug and error records.
	// Nil means no logging.
	Logger *zap.Logger
}

// Normalize applies defaults and validates the configuration.
func (c *Config) Normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if c.URL == "" && c.Host == "" {
		return fmt.Errorf("either URL or Host is required")
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.TLSConfig == nil {
		c.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return nil
}

// Address returns the server URL, deriving it from Host and Port when no
// explicit URL is configured.
func (c *Config) Address() string {
	if c.URL != "" {
		return c.URL
	}

	scheme := "ldaps"
	if !c.UseTLS {
		scheme = "ldap"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// DefaultConfig returns a configuration with secure defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{UseTLS: true}
	_ = defaults.Set(cfg)
	cfg.TLSConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	return cfg
}

// Client provides synchronous directory operations over a single
// connection. Implementations hold no state beyond bound-or-not-bound.
type Client interface {
	// Bind authenticates with a simple bind. An empty username performs
	// an anonymous bind; an empty password performs an unauthenticated
	// bind with the given name.
	Bind(ctx context.Context, username, password string) error

	// BindGSSAPI authenticates using Kerberos credentials from the
	// configuration.
	BindGSSAPI(ctx context.Context) error

	// Search sends one search request and returns the response entries.
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)

	// Close tears down the connection.
	Close() error
}

// SearchRequest encapsulates directory search parameters.
type SearchRequest struct {
	BaseDN       string
	Scope        SearchScope
	Filter       string
	Attributes   []string
	SizeLimit    int
	TimeLimit    time.Duration
	DerefAliases DerefAliases
}

// SearchResult contains the entries of one search response.
type SearchResult struct {
	Entries []*ldap.Entry
}

// SearchScope defines search breadth.
type SearchScope int

const (
	ScopeBaseObject SearchScope = iota
	ScopeSingleLevel
	ScopeWholeSubtree
)

// Valid reports whether the scope is one of the three defined values.
func (s SearchScope) Valid() bool {
	return s >= ScopeBaseObject && s <= ScopeWholeSubtree
}

// String returns the RFC 4511 name of the scope.
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "base"
	case ScopeSingleLevel:
		return "one"
	case ScopeWholeSubtree:
		return "sub"
	default:
		return "unknown"
	}
}

// DerefAliases defines alias dereferencing behavior.
type DerefAliases int

const (
	NeverDerefAliases DerefAliases = iota
	DerefInSearching
	DerefFindingBaseObj
	DerefAlways
)
