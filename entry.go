package directoryservices

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ldapx "github.com/dirshim/directoryservices/internal/ldap"
)

// ErrEntryClosed is returned when a closed entry is asked to bind or
// talk to the directory again.
var ErrEntryClosed = errors.New("directoryservices: entry has been closed")

// AuthenticationType selects how an entry's connection authenticates.
type AuthenticationType int

const (
	// AuthNone binds anonymously, or with a simple bind when
	// credentials are present (the legacy default).
	AuthNone AuthenticationType = iota
	// AuthSimple always performs a simple bind with the credential pair.
	AuthSimple
	// AuthSecure performs a Kerberos (GSSAPI) bind.
	AuthSecure
)

// Valid reports whether the value is one of the defined types.
func (a AuthenticationType) Valid() bool {
	return a >= AuthNone && a <= AuthSecure
}

// String returns the name of the authentication type.
func (a AuthenticationType) String() string {
	switch a {
	case AuthNone:
		return "none"
	case AuthSimple:
		return "simple"
	case AuthSecure:
		return "secure"
	default:
		return "unknown"
	}
}

// dialFunc opens a connection to a directory server. Tests substitute
// a fake; production entries use the go-ldap backed dialer.
type dialFunc func(ctx context.Context, cfg *ldapx.Config) (ldapx.Client, error)

// DirectoryEntry is a node in the directory, identified by its path.
// The connection is established lazily on first use and is torn down
// whenever the path, credentials, or authentication type change.
type DirectoryEntry struct {
	mu sync.Mutex

	path     string
	username string
	password string
	authType AuthenticationType

	timeout   time.Duration
	tlsConfig *tls.Config
	logger    *zap.Logger
	dial      dialFunc

	client ldapx.Client
	parsed *adsPath            // cached path split, cleared on SetPath
	props  *PropertyCollection // populated at most once, cleared on invalidation
	closed bool
}

// Option configures a DirectoryEntry at construction.
type Option func(*DirectoryEntry)

// WithCredentials sets the credential pair used to bind.
func WithCredentials(username, password string) Option {
	return func(e *DirectoryEntry) {
		e.username = username
		e.password = password
	}
}

// WithAuthenticationType sets how the entry authenticates.
func WithAuthenticationType(authType AuthenticationType) Option {
	return func(e *DirectoryEntry) {
		e.authType = authType
	}
}

// WithTimeout sets the dial and per-operation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *DirectoryEntry) {
		e.timeout = timeout
	}
}

// WithTLSConfig supplies a TLS configuration for the connection.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(e *DirectoryEntry) {
		e.tlsConfig = cfg
	}
}

// WithLogger attaches a logger for operation-level records.
func WithLogger(logger *zap.Logger) Option {
	return func(e *DirectoryEntry) {
		e.logger = logger
	}
}

// NewDirectoryEntry creates an entry for path. Nothing touches the
// network until the entry binds.
func NewDirectoryEntry(path string, opts ...Option) *DirectoryEntry {
	e := &DirectoryEntry{
		path: path,
		dial: func(ctx context.Context, cfg *ldapx.Config) (ldapx.Client, error) {
			return ldapx.Dial(ctx, cfg)
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Path returns the entry's directory path.
func (e *DirectoryEntry) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// SetPath repoints the entry. The connection is torn down and the
// cached names and properties are cleared; reconnection is deferred to
// the next operation.
func (e *DirectoryEntry) SetPath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if path == e.path {
		return
	}

	e.path = path
	e.invalidateLocked()
}

// SetCredentials replaces the credential pair and tears down the
// connection so the next operation rebinds.
func (e *DirectoryEntry) SetCredentials(username, password string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.username = username
	e.password = password
	e.unbindLocked()
}

// AuthenticationType returns the configured authentication type.
func (e *DirectoryEntry) AuthenticationType() AuthenticationType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authType
}

// SetAuthenticationType changes how the entry authenticates, tearing
// down the connection. Undefined values are rejected.
func (e *DirectoryEntry) SetAuthenticationType(authType AuthenticationType) error {
	if !authType.Valid() {
		return fmt.Errorf("invalid authentication type: %d", int(authType))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.authType = authType
	e.unbindLocked()
	return nil
}

// invalidateLocked drops everything derived from the old identity.
func (e *DirectoryEntry) invalidateLocked() {
	e.parsed = nil
	e.props = nil
	e.unbindLocked()
}

// unbindLocked tears down the connection, deferring reconnection.
func (e *DirectoryEntry) unbindLocked() {
	if e.client != nil {
		_ = e.client.Close()
		e.client = nil
	}
	e.props = nil
}

// parsedLocked returns the cached path split, computing it on demand.
func (e *DirectoryEntry) parsedLocked() (*adsPath, error) {
	if e.parsed != nil {
		return e.parsed, nil
	}

	parsed, err := parsePath(e.path)
	if err != nil {
		return nil, err
	}

	e.parsed = parsed
	return parsed, nil
}

// Name returns the entry's relative name, the leading component of its
// distinguished name ("CN=John Doe"). Derived by string splitting; no
// directory round trip.
func (e *DirectoryEntry) Name() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	parsed, err := e.parsedLocked()
	if err != nil {
		return "", err
	}

	return ldapx.FirstRDN(parsed.dn), nil
}

// pathInfo returns the cached path split for collaborators in this
// package.
func (e *DirectoryEntry) pathInfo() (*adsPath, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parsedLocked()
}

// DistinguishedName returns the DN portion of the entry's path.
func (e *DirectoryEntry) DistinguishedName() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	parsed, err := e.parsedLocked()
	if err != nil {
		return "", err
	}

	return parsed.dn, nil
}

// Bind connects and authenticates. Binding an already-bound entry is a
// no-op; binding a closed entry fails with ErrEntryClosed.
func (e *DirectoryEntry) Bind(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bindLocked(ctx)
}

func (e *DirectoryEntry) bindLocked(ctx context.Context) error {
	if e.closed {
		return ErrEntryClosed
	}

	if e.client != nil {
		return nil
	}

	parsed, err := e.parsedLocked()
	if err != nil {
		return err
	}

	host, err := parsed.serverHost()
	if err != nil {
		return err
	}

	cfg := &ldapx.Config{
		Host:      host,
		Username:  e.username,
		Password:  e.password,
		Timeout:   e.timeout,
		TLSConfig: e.tlsConfig,
		Logger:    e.logger,
	}
	if parsed.port > 0 {
		cfg.Port = parsed.port
		// 636 and 3269 are the TLS directory ports.
		cfg.UseTLS = parsed.port == 636 || parsed.port == 3269
	} else {
		cfg.UseTLS = true
	}

	client, err := e.dial(ctx, cfg)
	if err != nil {
		return err
	}

	switch e.authType {
	case AuthSecure:
		err = client.BindGSSAPI(ctx)
	default:
		err = client.Bind(ctx, e.username, e.password)
	}
	if err != nil {
		_ = client.Close()
		return err
	}

	e.client = client
	return nil
}

// search runs one request against the entry's connection, binding
// first when needed.
func (e *DirectoryEntry) search(ctx context.Context, req *ldapx.SearchRequest) (*ldapx.SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.bindLocked(ctx); err != nil {
		return nil, err
	}

	return e.client.Search(ctx, req)
}

// Properties returns the entry's attribute set, populating it with a
// single base-scope search on first call. The populated set is
// read-only and reused until the entry is invalidated or refreshed.
func (e *DirectoryEntry) Properties(ctx context.Context) (*PropertyCollection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.propertiesLocked(ctx)
}

func (e *DirectoryEntry) propertiesLocked(ctx context.Context) (*PropertyCollection, error) {
	if e.props != nil {
		return e.props, nil
	}

	if err := e.bindLocked(ctx); err != nil {
		return nil, err
	}

	result, err := e.client.Search(ctx, &ldapx.SearchRequest{
		BaseDN: e.parsed.dn,
		Scope:  ldapx.ScopeBaseObject,
		Filter: "(objectClass=*)",
	})
	if err != nil {
		return nil, err
	}

	if len(result.Entries) == 0 {
		return nil, ErrNotFound
	}

	e.props = newPropertyCollection(result.Entries[0])
	return e.props, nil
}

// RefreshCache discards the property set and repopulates it from the
// directory.
func (e *DirectoryEntry) RefreshCache(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.props = nil
	_, err := e.propertiesLocked(ctx)
	return err
}

// Parent returns an entry for the node one level up, carrying over the
// credentials and connection settings. Entries at the naming-context
// root have no parent.
func (e *DirectoryEntry) Parent() (*DirectoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	parsed, err := e.parsedLocked()
	if err != nil {
		return nil, err
	}

	parentDN := ldapx.ParentDN(parsed.dn)
	if parentDN == "" {
		return nil, fmt.Errorf("entry %q has no parent", e.path)
	}

	return e.deriveLocked(parsed.withDN(parentDN)), nil
}

// ChildEntry returns an entry for the named child without consulting
// the directory. The value is RDN-escaped before composition.
func (e *DirectoryEntry) ChildEntry(attribute, value string) (*DirectoryEntry, error) {
	if attribute == "" || value == "" {
		return nil, fmt.Errorf("child attribute and value are both required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	parsed, err := e.parsedLocked()
	if err != nil {
		return nil, err
	}

	childDN := attribute + "=" + ldapx.EscapeDNValue(value) + "," + parsed.dn
	return e.deriveLocked(parsed.withDN(childDN)), nil
}

// Children lists the entries one level below this one.
func (e *DirectoryEntry) Children(ctx context.Context) ([]*DirectoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.bindLocked(ctx); err != nil {
		return nil, err
	}

	result, err := e.client.Search(ctx, &ldapx.SearchRequest{
		BaseDN:     e.parsed.dn,
		Scope:      ldapx.ScopeSingleLevel,
		Filter:     "(objectClass=*)",
		Attributes: []string{"distinguishedName"},
	})
	if err != nil {
		return nil, err
	}

	children := make([]*DirectoryEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		children = append(children, e.deriveLocked(e.parsed.withDN(entry.DN)))
	}

	return children, nil
}

// deriveLocked creates an entry at path sharing this entry's
// credentials, authentication type, connection settings, and dialer.
func (e *DirectoryEntry) deriveLocked(path string) *DirectoryEntry {
	return &DirectoryEntry{
		path:      path,
		username:  e.username,
		password:  e.password,
		authType:  e.authType,
		timeout:   e.timeout,
		tlsConfig: e.tlsConfig,
		logger:    e.logger,
		dial:      e.dial,
	}
}

// ObjectGUID reads the entry's objectGUID attribute, decoding the
// directory's mixed-endian wire form.
func (e *DirectoryEntry) ObjectGUID(ctx context.Context) (uuid.UUID, error) {
	props, err := e.Properties(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	raw := props.Get("objectGUID").Raw()
	if len(raw) == 0 {
		return uuid.Nil, fmt.Errorf("entry has no objectGUID attribute")
	}

	return ldapx.GUIDFromBytes(raw[0])
}

// ObjectSID reads the entry's objectSid attribute as an S-1-5-21...
// string.
func (e *DirectoryEntry) ObjectSID(ctx context.Context) (string, error) {
	props, err := e.Properties(ctx)
	if err != nil {
		return "", err
	}

	raw := props.Get("objectSid").Raw()
	if len(raw) == 0 {
		return "", fmt.Errorf("entry has no objectSid attribute")
	}

	return ldapx.SIDFromBytes(raw[0])
}

// Close tears down the connection and marks the entry unusable. Close
// is idempotent; any later bind fails with ErrEntryClosed.
func (e *DirectoryEntry) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.unbindLocked()
	return nil
}

// Exists reports whether an entry exists at path. Lookup failures
// caused by a missing object map to (false, nil); every other failure
// is returned as-is.
func Exists(ctx context.Context, path string, opts ...Option) (bool, error) {
	entry := NewDirectoryEntry(path, opts...)
	defer entry.Close()

	_, err := entry.Properties(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound), ldapx.IsNotFoundError(err):
		return false, nil
	default:
		return false, err
	}
}
