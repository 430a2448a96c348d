package ldap

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// client implements Client over a single go-ldap connection.
type client struct {
	conn   *ldap.Conn
	config *Config
	logger *zap.Logger
}

// Dial establishes a connection to the configured directory server.
// The returned client is unbound; callers authenticate with Bind or
// BindGSSAPI before searching, or rely on the server accepting
// anonymous operations.
func Dial(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Normalize(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := config.Address()
	logger := config.Logger

	start := time.Now()
	conn, err := ldap.DialURL(addr,
		ldap.DialWithDialer(&net.Dialer{Timeout: config.Timeout}),
		ldap.DialWithTLSConfig(config.TLSConfig),
	)
	if err != nil {
		logger.Error("directory dial failed",
			zap.String("address", addr),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	conn.SetTimeout(config.Timeout)

	logger.Debug("directory connection established",
		zap.String("address", addr),
		zap.Duration("elapsed", time.Since(start)))

	return &client{
		conn:   conn,
		config: config,
		logger: logger,
	}, nil
}

// Bind performs a simple bind. An empty username is an anonymous bind;
// a username without a password is an unauthenticated bind.
func (c *client) Bind(ctx context.Context, username, password string) error {
	return c.logOperation(ctx, "bind",
		[]zap.Field{zap.String("username", username)},
		func() error {
			switch {
			case username == "":
				return c.conn.UnauthenticatedBind("")
			case password == "":
				return c.conn.UnauthenticatedBind(username)
			default:
				return c.conn.Bind(username, password)
			}
		})
}

// BindGSSAPI performs a Kerberos bind using the client configuration.
func (c *client) BindGSSAPI(ctx context.Context) error {
	return c.logOperation(ctx, "gssapi_bind",
		[]zap.Field{zap.String("username", c.config.Username)},
		func() error {
			return bindKerberos(c.conn, c.config)
		})
}

// Search sends one synchronous search request. A non-success result
// code from the server is returned as an *OperationError carrying the
// code and server message.
func (c *client) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req == nil {
		return nil, fmt.Errorf("search request cannot be nil")
	}

	if !req.Scope.Valid() {
		return nil, fmt.Errorf("invalid search scope: %d", int(req.Scope))
	}

	var result *SearchResult
	err := c.logOperation(ctx, "search",
		[]zap.Field{
			zap.String("base_dn", req.BaseDN),
			zap.String("scope", req.Scope.String()),
			zap.String("filter", req.Filter),
			zap.Strings("attributes", req.Attributes),
			zap.Int("size_limit", req.SizeLimit),
		},
		func() error {
			ldapReq := ldap.NewSearchRequest(
				req.BaseDN,
				int(req.Scope),
				int(req.DerefAliases),
				req.SizeLimit,
				int(req.TimeLimit.Seconds()),
				false, // TypesOnly
				req.Filter,
				req.Attributes,
				nil, // Controls
			)

			res, err := c.conn.Search(ldapReq)
			if err != nil {
				// A size limit cap is not a failure: the server returns
				// the partial set alongside the result code.
				if res != nil && ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
					result = &SearchResult{Entries: res.Entries}
					return nil
				}
				return WrapError("search", err)
			}

			result = &SearchResult{Entries: res.Entries}
			return nil
		})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("search completed",
		zap.String("base_dn", req.BaseDN),
		zap.Int("entries", len(result.Entries)))

	return result, nil
}

// Close tears down the connection. Safe to call more than once.
func (c *client) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil

	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "closed") {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
