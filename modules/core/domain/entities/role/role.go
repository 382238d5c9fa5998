// Package role defines the fixed set of roles a user can hold inside one
// organization, plus the normalization rules for the role strings that
// arrive from application code and from the identity provider.
package role

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	Admin      Role = "admin"
	Dispatcher Role = "dispatcher"
	Driver     Role = "driver"
	Customer   Role = "customer"
)

// ErrLegacyRole marks role strings in the deprecated vendor-namespaced
// format. These must never be silently accepted or silently dropped.
var ErrLegacyRole = errors.New("legacy roles are not supported")

const legacyPrefix = "org:"

func All() []Role {
	return []Role{Admin, Dispatcher, Driver, Customer}
}

func (r Role) Valid() bool {
	switch r {
	case Admin, Dispatcher, Driver, Customer:
		return true
	}
	return false
}

// aliases maps known external/legacy role spellings onto the internal set.
// This table applies to required-roles lists supplied by application code;
// stored role values never go through it (see NormalizeStored).
var aliases = map[string]Role{
	"owner":          Admin,
	"org:owner":      Admin,
	"org:admin":      Admin,
	"dispatch":       Dispatcher,
	"org:dispatcher": Dispatcher,
	"org:driver":     Driver,
	"viewer":         Customer,
	"org:viewer":     Customer,
	"member":         Customer,
}

// Normalize maps s onto the internal role set via the canonical names and
// the alias table. Unknown input is not an error here: the second return
// value is false and the caller decides.
func Normalize(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r := Role(s); r.Valid() {
		return r, true
	}
	if r, ok := aliases[s]; ok {
		return r, true
	}
	return "", false
}

// NormalizeStored validates a role value read back from the data store.
// Stored values must already be canonical: anything aliased, legacy or
// unknown means the stored data is suspect and is a hard error, never
// "no role".
func NormalizeStored(s string) (Role, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if r := Role(trimmed); r.Valid() {
		return r, nil
	}
	if strings.HasPrefix(trimmed, legacyPrefix) {
		return "", fmt.Errorf("%w: stored role %q", ErrLegacyRole, s)
	}
	return "", fmt.Errorf("unparseable stored role %q", s)
}

// NormalizeRequired maps a caller-supplied required-roles list onto the
// internal set. An empty input is a legitimate "no restriction" and yields
// an empty slice. A non-empty input that normalizes to nothing is a hard
// error: an unrecognized requirement must never fail open.
func NormalizeRequired(in []string) ([]Role, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]Role, 0, len(in))
	seen := make(map[Role]struct{}, len(in))
	for _, s := range in {
		r, ok := Normalize(s)
		if !ok {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), legacyPrefix) {
				return nil, fmt.Errorf("%w: required role %q", ErrLegacyRole, s)
			}
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("required roles %v contain no supported role", in)
	}
	return out, nil
}
