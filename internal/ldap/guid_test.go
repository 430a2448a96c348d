package ldap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
)

func TestGUIDFromBytes(t *testing.T) {
	// Wire bytes with the first three fields little-endian.
	raw := []byte{
		0x04, 0x03, 0x02, 0x01, // Data1
		0x06, 0x05, // Data2
		0x08, 0x07, // Data3
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, // Data4
	}

	id, err := GUIDFromBytes(raw)
	if err != nil {
		t.Fatalf("GUIDFromBytes() failed: %v", err)
	}

	expected := "01020304-0506-0708-090a-0b0c0d0e0f10"
	if id.String() != expected {
		t.Errorf("expected %s, got %s", expected, id.String())
	}
}

func TestGUIDFromBytes_InvalidLength(t *testing.T) {
	for _, length := range []int{0, 8, 15, 17} {
		if _, err := GUIDFromBytes(make([]byte, length)); err == nil {
			t.Errorf("expected error for %d-byte input", length)
		}
	}
}

func TestGUIDRoundTrip(t *testing.T) {
	id := uuid.MustParse("12345678-9abc-def0-1122-334455667788")

	decoded, err := GUIDFromBytes(GUIDToBytes(id))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	if decoded != id {
		t.Errorf("round trip changed GUID: %s != %s", decoded, id)
	}
}

func TestGUIDFilter(t *testing.T) {
	id := uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")

	filter := GUIDFilter(id)

	if !strings.HasPrefix(filter, "(objectGUID=") || !strings.HasSuffix(filter, ")") {
		t.Fatalf("malformed filter: %q", filter)
	}
	// Binary values must be hex-escaped for the filter.
	if !strings.Contains(filter, "\\04\\03\\02\\01") {
		t.Errorf("expected little-endian Data1 escape in filter, got %q", filter)
	}
}

func TestExtractGUID(t *testing.T) {
	raw := GUIDToBytes(uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10"))

	entry := &ldap.Entry{
		DN: "CN=John Doe,DC=example,DC=com",
		Attributes: []*ldap.EntryAttribute{
			{Name: "objectGUID", ByteValues: [][]byte{raw}},
		},
	}

	id, err := ExtractGUID(entry)
	if err != nil {
		t.Fatalf("ExtractGUID() failed: %v", err)
	}
	if !bytes.Equal(GUIDToBytes(id), raw) {
		t.Error("extracted GUID does not round-trip to the wire bytes")
	}

	if _, err := ExtractGUID(nil); err == nil {
		t.Error("expected error for nil entry")
	}

	empty := &ldap.Entry{DN: "CN=x"}
	if _, err := ExtractGUID(empty); err == nil {
		t.Error("expected error when objectGUID is absent")
	}
}
