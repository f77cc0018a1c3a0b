package permissions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMalformedGrants is returned when a stored grant blob is not a JSON object
var ErrMalformedGrants = errors.New("malformed permission grants")

// Set is an unordered collection of permissions
type Set map[Permission]struct{}

// NewSet builds a set from the given permissions
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the set members in lexical order
func (s Set) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// ParseGrants decodes a custom role's stored permission blob.
//
// The blob is a JSON object of permission name to boolean. Only keys whose value is
// literally true are granted. Keys outside the vocabulary are dropped and returned in
// unknown so the caller can report them. An empty blob grants nothing.
func ParseGrants(blob string) (Set, []string, error) {
	if strings.TrimSpace(blob) == "" {
		return Set{}, nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return Set{}, nil, fmt.Errorf("%w: %v", ErrMalformedGrants, err)
	}
	// "null" decodes into a nil map without error
	if raw == nil {
		return Set{}, nil, fmt.Errorf("%w: not an object", ErrMalformedGrants)
	}

	granted := make(Set, len(raw))
	var unknown []string
	for key, value := range raw {
		if !bytes.Equal(bytes.TrimSpace(value), []byte("true")) {
			continue
		}
		p := Permission(key)
		if !Known(p) {
			unknown = append(unknown, key)
			continue
		}
		granted[p] = struct{}{}
	}
	slices.Sort(unknown)

	return granted, unknown, nil
}

// EncodeGrants renders a set in the stored blob format
func EncodeGrants(s Set) (string, error) {
	m := make(map[Permission]bool, len(s))
	for p := range s {
		m[p] = true
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal grants: %w", err)
	}
	return string(data), nil
}
