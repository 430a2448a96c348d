package ldap

import (
	"strings"
)

// Distinguished names are handled by string splitting, not schema
// lookup: component boundaries are unescaped commas, and values are
// whatever the server sent between them.

// SplitDN splits a distinguished name into its relative components,
// honoring RFC 4514 escaping. Whitespace around separators is trimmed;
// escaped commas stay part of their value.
//
//	SplitDN("CN=Doe\\, John,OU=Users,DC=example,DC=com")
//	→ ["CN=Doe\\, John", "OU=Users", "DC=example", "DC=com"]
func SplitDN(dn string) []string {
	if dn == "" {
		return nil
	}

	var components []string
	var current strings.Builder
	escaped := false

	for _, r := range dn {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			current.WriteRune(r)
			escaped = true
		case r == ',':
			components = append(components, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	components = append(components, strings.TrimSpace(current.String()))

	return components
}

// FirstRDN returns the leading relative distinguished name of dn, or
// the empty string for an empty dn.
func FirstRDN(dn string) string {
	components := SplitDN(dn)
	if len(components) == 0 {
		return ""
	}
	return components[0]
}

// ParentDN returns dn with its leading component removed. The empty
// string is returned when dn has one component or fewer.
func ParentDN(dn string) string {
	components := SplitDN(dn)
	if len(components) < 2 {
		return ""
	}
	return strings.Join(components[1:], ",")
}

// RDNValue returns the unescaped value portion of a relative
// distinguished name ("CN=Doe\\, John" → "Doe, John"). Input without
// an attribute separator is returned unescaped as-is.
func RDNValue(rdn string) string {
	if idx := indexUnescaped(rdn, '='); idx >= 0 {
		return UnescapeDNValue(rdn[idx+1:])
	}
	return UnescapeDNValue(rdn)
}

// DomainFromDN derives a DNS domain from the DC components of a
// distinguished name ("CN=x,DC=example,DC=com" → "example.com").
// The empty string is returned when no DC components exist.
func DomainFromDN(dn string) string {
	var labels []string

	for _, component := range SplitDN(dn) {
		if len(component) >= 3 && strings.EqualFold(component[:3], "DC=") {
			labels = append(labels, UnescapeDNValue(component[3:]))
		}
	}

	return strings.Join(labels, ".")
}

// indexUnescaped returns the index of the first unescaped occurrence of
// sep in s, or -1.
func indexUnescaped(s string, sep byte) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == sep:
			return i
		}
	}
	return -1
}

// EscapeDNValue escapes special characters in a DN attribute value per
// RFC 4514: the characters , + " \ < > ; always, # when leading, and
// spaces when leading or trailing. NUL bytes become \00.
func EscapeDNValue(value string) string {
	if value == "" {
		return value
	}

	var b strings.Builder
	b.Grow(len(value) + 8)

	for i, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '#':
			if i == 0 {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		case ' ':
			if i == 0 || i == len(value)-1 {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		case 0:
			b.WriteString("\\00")
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// UnescapeDNValue is the inverse of EscapeDNValue. It removes simple
// backslash escapes and decodes two-digit hex escapes such as \00.
func UnescapeDNValue(value string) string {
	if !strings.Contains(value, "\\") {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))

	for i := 0; i < len(value); i++ {
		if value[i] != '\\' {
			b.WriteByte(value[i])
			continue
		}

		// Trailing backslash with nothing to escape.
		if i == len(value)-1 {
			b.WriteByte('\\')
			break
		}

		// Two-digit hex escape.
		if i+2 < len(value) {
			hi, okHi := hexDigit(value[i+1])
			lo, okLo := hexDigit(value[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}

		// Simple escaped character.
		i++
		b.WriteByte(value[i])
	}

	return b.String()
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
