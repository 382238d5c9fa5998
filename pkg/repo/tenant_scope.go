// Package repo carries the tenant-scoped SQL helpers shared by the
// persistence layers. Every statement built here binds the tenant id as its
// first argument; there is no way to obtain a statement against a shared
// table without one.
package repo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/pkg/composables"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Scope is a validated tenant binding. The zero value is unusable; obtain
// one through ForTenant so a nil tenant id fails closed.
type Scope struct {
	tenantID uuid.UUID
}

func ForTenant(tenantID uuid.UUID) (Scope, error) {
	id, err := composables.RequireTenantID(tenantID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{tenantID: id}, nil
}

func (s Scope) TenantID() uuid.UUID {
	return s.tenantID
}

func (s Scope) Table(name string) (*ScopedTable, error) {
	if !identPattern.MatchString(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	return &ScopedTable{scope: s, name: name}, nil
}

// ScopedTable builds statements over one shared multi-tenant table.
type ScopedTable struct {
	scope Scope
	name  string
}

func (t *ScopedTable) Name() string {
	return t.name
}

// SelectSQL returns "SELECT cols FROM table WHERE tenant_id = $1 AND extra",
// with args starting at the tenant id. extra may be empty; its placeholders
// must start at $2.
func (t *ScopedTable) SelectSQL(cols []string, extra string, extraArgs ...any) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(t.name)
	b.WriteString(" WHERE tenant_id = $1")
	if extra != "" {
		b.WriteString(" AND ")
		b.WriteString(extra)
	}
	args := append([]any{t.scope.tenantID}, extraArgs...)
	return b.String(), args
}

// ExistsOwned reports whether id exists in the table AND belongs to the
// scope's tenant. Mere existence under another tenant reports false.
func (t *ScopedTable) ExistsOwned(ctx context.Context, tx composables.Tx, id uuid.UUID) (bool, error) {
	query, args := t.SelectSQL([]string{"1"}, "id = $2", id)
	var found bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}
