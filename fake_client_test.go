package directoryservices

import (
	"context"

	"github.com/go-ldap/ldap/v3"

	ldapx "github.com/dirshim/directoryservices/internal/ldap"
)

// fakeClient implements ldapx.Client against canned response entries,
// recording every request it sees.
type fakeClient struct {
	entries         []*ldap.Entry
	bindErr         error
	searchErr       error
	ignoreSizeLimit bool // simulate a server that over-delivers

	requests    []*ldapx.SearchRequest
	bindUser    string
	bindPass    string
	binds       int
	gssapiBinds int
	closes      int
}

func (f *fakeClient) Bind(_ context.Context, username, password string) error {
	f.binds++
	f.bindUser = username
	f.bindPass = password
	return f.bindErr
}

func (f *fakeClient) BindGSSAPI(_ context.Context) error {
	f.gssapiBinds++
	return f.bindErr
}

func (f *fakeClient) Search(_ context.Context, req *ldapx.SearchRequest) (*ldapx.SearchResult, error) {
	f.requests = append(f.requests, req)

	if f.searchErr != nil {
		return nil, f.searchErr
	}

	entries := f.entries
	if !f.ignoreSizeLimit && req.SizeLimit > 0 && len(entries) > req.SizeLimit {
		entries = entries[:req.SizeLimit]
	}

	return &ldapx.SearchResult{Entries: entries}, nil
}

func (f *fakeClient) Close() error {
	f.closes++
	return nil
}

// fakeDialer hands out a fakeClient, recording the configs it was
// dialed with.
type fakeDialer struct {
	client  *fakeClient
	dialErr error

	dials   int
	configs []*ldapx.Config
}

func (d *fakeDialer) dial(_ context.Context, cfg *ldapx.Config) (ldapx.Client, error) {
	d.dials++
	d.configs = append(d.configs, cfg)

	if d.dialErr != nil {
		return nil, d.dialErr
	}

	return d.client, nil
}

// newTestEntry builds an entry whose connections go to the fake client.
func newTestEntry(path string, client *fakeClient, opts ...Option) (*DirectoryEntry, *fakeDialer) {
	dialer := &fakeDialer{client: client}

	entry := NewDirectoryEntry(path, opts...)
	entry.dial = dialer.dial

	return entry, dialer
}

// directoryEntry builds a canned response entry. String values double
// as byte values, as go-ldap does on the wire.
func directoryEntry(dn string, attributes map[string][]string) *ldap.Entry {
	return ldap.NewEntry(dn, attributes)
}
