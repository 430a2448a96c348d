package ldap

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
)

// binarySID encodes S-1-5-21-1-2-3: revision 1, four subauthorities,
// identifier authority 5, subauthorities little-endian.
var binarySID = []byte{
	0x01, 0x04,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x15, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x00, 0x00,
	0x03, 0x00, 0x00, 0x00,
}

func TestSIDFromBytes(t *testing.T) {
	sid, err := SIDFromBytes(binarySID)
	if err != nil {
		t.Fatalf("SIDFromBytes() failed: %v", err)
	}

	expected := "S-1-5-21-1-2-3"
	if sid != expected {
		t.Errorf("expected %s, got %s", expected, sid)
	}
}

func TestSIDFromBytes_Empty(t *testing.T) {
	if _, err := SIDFromBytes(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestExtractSID(t *testing.T) {
	entry := &ldap.Entry{
		DN: "CN=John Doe,DC=example,DC=com",
		Attributes: []*ldap.EntryAttribute{
			{Name: "objectSid", ByteValues: [][]byte{binarySID}},
		},
	}

	sid, err := ExtractSID(entry)
	if err != nil {
		t.Fatalf("ExtractSID() failed: %v", err)
	}
	if sid != "S-1-5-21-1-2-3" {
		t.Errorf("unexpected SID: %s", sid)
	}

	if _, err := ExtractSID(nil); err == nil {
		t.Error("expected error for nil entry")
	}

	empty := &ldap.Entry{DN: "CN=x"}
	if _, err := ExtractSID(empty); err == nil {
		t.Error("expected error when objectSid is absent")
	}
}
