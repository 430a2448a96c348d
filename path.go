package directoryservices

import (
	"fmt"
	"strconv"
	"strings"

	ldapx "github.com/dirshim/directoryservices/internal/ldap"
)

// adsPath is the parsed form of a directory path such as
// "LDAP://dc1.example.com:636/CN=John Doe,DC=example,DC=com". The
// server segment is optional; serverless paths bind to the domain
// joined from the DC components of the distinguished name.
type adsPath struct {
	host string // empty for serverless paths
	port int    // 0 when unspecified
	dn   string
}

const pathScheme = "LDAP://"

// parsePath splits a directory path into server and distinguished-name
// portions. The server segment is recognized by not containing '=':
// everything after "LDAP://" up to the first '/' is the server when it
// is not itself a DN component.
func parsePath(path string) (*adsPath, error) {
	if path == "" {
		return nil, fmt.Errorf("directory path cannot be empty")
	}

	if len(path) < len(pathScheme) || !strings.EqualFold(path[:len(pathScheme)], pathScheme) {
		return nil, fmt.Errorf("unsupported directory path %q: expected %q prefix", path, pathScheme)
	}

	rest := path[len(pathScheme):]
	if rest == "" {
		return nil, fmt.Errorf("directory path %q has no distinguished name", path)
	}

	parsed := &adsPath{}

	server, dn, found := strings.Cut(rest, "/")
	if found && !strings.Contains(server, "=") {
		host, port, err := splitServer(server)
		if err != nil {
			return nil, fmt.Errorf("invalid server in path %q: %w", path, err)
		}
		parsed.host = host
		parsed.port = port
		parsed.dn = dn
	} else {
		parsed.dn = rest
	}

	if parsed.dn == "" {
		return nil, fmt.Errorf("directory path %q has no distinguished name", path)
	}

	return parsed, nil
}

// splitServer parses "host" or "host:port".
func splitServer(server string) (string, int, error) {
	host, portStr, found := strings.Cut(server, ":")
	if host == "" {
		return "", 0, fmt.Errorf("empty host")
	}
	if !found {
		return host, 0, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}

	return host, port, nil
}

// serverHost returns the host to bind to: the explicit path host, or
// the domain derived from the DC components of the distinguished name.
func (p *adsPath) serverHost() (string, error) {
	if p.host != "" {
		return p.host, nil
	}

	domain := ldapx.DomainFromDN(p.dn)
	if domain == "" {
		return "", fmt.Errorf("path has no server and no DC components to derive one from")
	}

	return domain, nil
}

// withDN rebuilds a path string addressing dn through the same server
// segment as p.
func (p *adsPath) withDN(dn string) string {
	switch {
	case p.host == "":
		return pathScheme + dn
	case p.port == 0:
		return pathScheme + p.host + "/" + dn
	default:
		return fmt.Sprintf("%s%s:%d/%s", pathScheme, p.host, p.port, dn)
	}
}

// String reassembles the original path form.
func (p *adsPath) String() string {
	return p.withDN(p.dn)
}
