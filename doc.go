/*
Package directoryservices re-exposes the legacy directory-access object
model — entries, searchers, results, and property collections — on top
of the github.com/go-ldap/ldap/v3 protocol client, so existing calling
code can switch implementations by changing an import.

The surface is read-only: entries are looked up, their properties read,
and subtrees searched, but nothing is ever written back. Every
operation is one synchronous request and response; there is no pooling,
paging, caching, or retry.

# Entries

A DirectoryEntry is addressed by a path such as

	LDAP://dc1.example.com:636/CN=John Doe,OU=Users,DC=example,DC=com

The server segment is optional. Serverless paths derive the host from
the DC components of the distinguished name ("example.com" above). The
connection is established lazily on first use; changing the path,
credentials, or authentication type tears it down again.

	entry := directoryservices.NewDirectoryEntry(
		"LDAP://CN=John Doe,OU=Users,DC=example,DC=com",
		directoryservices.WithCredentials("admin@example.com", "password"),
	)
	defer entry.Close()

	props, err := entry.Properties(ctx)
	if err != nil {
		return err
	}
	fmt.Println(props.Get("mail").Value())

Properties populate once, in full, with a single base-scope search, and
are read-only afterwards: every mutation method returns ErrReadOnly.
Reading an absent property yields an empty collection, never an error.

# Searching

A DirectorySearcher runs one filtered search below a root entry:

	searcher := directoryservices.NewDirectorySearcher(root)
	searcher.SetFilter("(objectClass=user)")
	searcher.SetPropertiesToLoad("cn", "mail")

	results, err := searcher.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, result := range results {
		fmt.Println(result.Path())
	}

Results carry a snapshot of the requested properties and can
re-materialize a full DirectoryEntry with the root's credentials via
SearchResult.DirectoryEntry.

# Authentication

AuthNone (the legacy default) binds with the credential pair when one
is set and anonymously otherwise; AuthSimple always performs a simple
bind; AuthSecure performs a Kerberos (GSSAPI) bind using the system
krb5 configuration.

# Errors

A non-success result code from the server surfaces as an
*internal OperationError carrying the code and server message through
the returned error chain. Sentinel errors cover the shim's own
conditions: ErrNotFound for empty lookups, ErrEntryClosed for use
after Close, and ErrReadOnly for mutation attempts.
*/
package directoryservices
