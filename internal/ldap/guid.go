package ldap

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
)

// Active Directory stores objectGUID in mixed-endian order: the first
// three fields are little-endian, the remaining eight bytes big-endian.

// GUIDBytesLength is the wire size of an objectGUID value.
const GUIDBytesLength = 16

// GUIDFromBytes converts objectGUID wire bytes to a standard UUID.
func GUIDFromBytes(raw []byte) (uuid.UUID, error) {
	if len(raw) != GUIDBytesLength {
		return uuid.Nil, fmt.Errorf("invalid objectGUID length: expected %d bytes, got %d", GUIDBytesLength, len(raw))
	}

	return uuid.FromBytes(swapGUIDFields(raw))
}

// GUIDToBytes converts a standard UUID to objectGUID wire bytes.
func GUIDToBytes(id uuid.UUID) []byte {
	return swapGUIDFields(id[:])
}

// swapGUIDFields reverses the byte order of the first three GUID
// fields. The transform is its own inverse.
func swapGUIDFields(in []byte) []byte {
	out := make([]byte, GUIDBytesLength)

	out[0], out[1], out[2], out[3] = in[3], in[2], in[1], in[0] // Data1
	out[4], out[5] = in[5], in[4]                               // Data2
	out[6], out[7] = in[7], in[6]                               // Data3
	copy(out[8:], in[8:])                                       // Data4

	return out
}

// GUIDFilter builds an equality filter matching an objectGUID in its
// binary wire form.
func GUIDFilter(id uuid.UUID) string {
	return fmt.Sprintf("(objectGUID=%s)", ldap.EscapeFilter(string(GUIDToBytes(id))))
}

// ExtractGUID reads and decodes the objectGUID attribute of an entry.
func ExtractGUID(entry *ldap.Entry) (uuid.UUID, error) {
	if entry == nil {
		return uuid.Nil, fmt.Errorf("entry cannot be nil")
	}

	raw := entry.GetRawAttributeValue("objectGUID")
	if len(raw) == 0 {
		return uuid.Nil, fmt.Errorf("objectGUID attribute not found in entry")
	}

	return GUIDFromBytes(raw)
}
