package directoryservices

import (
	"errors"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// ErrReadOnly is returned by every mutation method on property
// collections: this shim exposes a read-only view of the directory.
var ErrReadOnly = errors.New("directoryservices: property collections are read-only")

// PropertyCollection is the full, read-only attribute set of a
// directory entry. Lookup is case-insensitive, matching directory
// attribute-name semantics.
type PropertyCollection struct {
	order  []string // attribute names in response order, original casing
	values map[string]*PropertyValueCollection
}

// newPropertyCollection copies every attribute of a response entry
// verbatim, string and raw byte forms alike.
func newPropertyCollection(entry *ldap.Entry) *PropertyCollection {
	pc := &PropertyCollection{
		values: make(map[string]*PropertyValueCollection, len(entry.Attributes)),
	}

	for _, attr := range entry.Attributes {
		values := make([]string, len(attr.Values))
		copy(values, attr.Values)

		raw := make([][]byte, len(attr.ByteValues))
		for i, b := range attr.ByteValues {
			raw[i] = append([]byte(nil), b...)
		}

		pc.order = append(pc.order, attr.Name)
		pc.values[strings.ToLower(attr.Name)] = &PropertyValueCollection{
			name:   attr.Name,
			values: values,
			raw:    raw,
		}
	}

	return pc
}

// Get returns the values stored under name. An absent name yields an
// empty, non-nil collection, never an error.
func (pc *PropertyCollection) Get(name string) *PropertyValueCollection {
	if pvc, ok := pc.values[strings.ToLower(name)]; ok {
		return pvc
	}
	return &PropertyValueCollection{name: name}
}

// Contains reports whether name is present.
func (pc *PropertyCollection) Contains(name string) bool {
	_, ok := pc.values[strings.ToLower(name)]
	return ok
}

// Names returns the attribute names in response order.
func (pc *PropertyCollection) Names() []string {
	names := make([]string, len(pc.order))
	copy(names, pc.order)
	return names
}

// Len returns the number of attributes.
func (pc *PropertyCollection) Len() int {
	return len(pc.values)
}

// Set always fails with ErrReadOnly.
func (pc *PropertyCollection) Set(name string, values ...string) error {
	return ErrReadOnly
}

// Remove always fails with ErrReadOnly.
func (pc *PropertyCollection) Remove(name string) error {
	return ErrReadOnly
}

// PropertyValueCollection holds the values of one attribute.
type PropertyValueCollection struct {
	name   string
	values []string
	raw    [][]byte
}

// Name returns the attribute name as sent by the server, or as
// requested when the attribute was absent.
func (pvc *PropertyValueCollection) Name() string {
	return pvc.name
}

// Len returns the number of values.
func (pvc *PropertyValueCollection) Len() int {
	return len(pvc.values)
}

// Value presents the attribute by cardinality: nil when empty, the
// scalar string for a single value, and a []string for several.
func (pvc *PropertyValueCollection) Value() any {
	switch len(pvc.values) {
	case 0:
		return nil
	case 1:
		return pvc.values[0]
	default:
		return pvc.Values()
	}
}

// Values returns all values in string form.
func (pvc *PropertyValueCollection) Values() []string {
	values := make([]string, len(pvc.values))
	copy(values, pvc.values)
	return values
}

// Raw returns all values as the bytes the server sent, for attributes
// such as objectGUID and objectSid that are not text.
func (pvc *PropertyValueCollection) Raw() [][]byte {
	raw := make([][]byte, len(pvc.raw))
	for i, b := range pvc.raw {
		raw[i] = append([]byte(nil), b...)
	}
	return raw
}

// Add always fails with ErrReadOnly.
func (pvc *PropertyValueCollection) Add(value string) error {
	return ErrReadOnly
}

// Set always fails with ErrReadOnly.
func (pvc *PropertyValueCollection) Set(values ...string) error {
	return ErrReadOnly
}

// Remove always fails with ErrReadOnly.
func (pvc *PropertyValueCollection) Remove(value string) error {
	return ErrReadOnly
}

// Clear always fails with ErrReadOnly.
func (pvc *PropertyValueCollection) Clear() error {
	return ErrReadOnly
}
