/*
Package ldap is the protocol glue under the directoryservices shim.

It wraps github.com/go-ldap/ldap/v3 with the small surface the shim
needs: a Config with applied defaults, a Client interface offering
simple and GSSAPI binds plus one synchronous search, structured
OperationError values carrying LDAP result codes, and helpers for
distinguished-name splitting, RFC 4514 escaping, and Active Directory
objectGUID/objectSid decoding.

Every operation is a single request with a synchronous response. There
is no pooling, paging, or retry; the only connection state is bound or
not bound.
*/
package ldap
