package ldap

import (
	"fmt"

	"github.com/bwmarrin/go-objectsid"
	"github.com/go-ldap/ldap/v3"
)

// SIDFromBytes converts a binary security identifier to its
// S-1-5-21-... string form.
func SIDFromBytes(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("binary SID cannot be empty")
	}

	sid := objectsid.Decode(raw)
	return sid.String(), nil
}

// ExtractSID reads and decodes the objectSid attribute of an entry.
func ExtractSID(entry *ldap.Entry) (string, error) {
	if entry == nil {
		return "", fmt.Errorf("entry cannot be nil")
	}

	raw := entry.GetRawAttributeValue("objectSid")
	if len(raw) == 0 {
		return "", fmt.Errorf("objectSid attribute not found in entry")
	}

	return SIDFromBytes(raw)
}
