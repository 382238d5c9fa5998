package repo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sanifleet/sanifleet/pkg/composables"
)

func TestForTenant_NilTenantFailsClosed(t *testing.T) {
	_, err := ForTenant(uuid.Nil)
	require.ErrorIs(t, err, composables.ErrNoTenantID)
}

func TestScopedTable_RejectsInvalidTableNames(t *testing.T) {
	scope, err := ForTenant(uuid.New())
	require.NoError(t, err)

	for _, name := range []string{"", "Customers", "cust;drop", "1table", "foo bar"} {
		_, err := scope.Table(name)
		require.Error(t, err, "table %q", name)
	}
}

func TestScopedTable_SelectAlwaysBindsTenantFirst(t *testing.T) {
	tenantID := uuid.New()
	scope, err := ForTenant(tenantID)
	require.NoError(t, err)

	table, err := scope.Table("customers")
	require.NoError(t, err)

	id := uuid.New()
	query, args := table.SelectSQL([]string{"id", "name"}, "id = $2", id)
	require.Equal(t, "SELECT id, name FROM customers WHERE tenant_id = $1 AND id = $2", query)
	require.Equal(t, []any{tenantID, id}, args)
}

func TestScopedTable_SelectWithoutExtraPredicate(t *testing.T) {
	tenantID := uuid.New()
	scope, err := ForTenant(tenantID)
	require.NoError(t, err)

	table, err := scope.Table("jobs")
	require.NoError(t, err)

	query, args := table.SelectSQL([]string{"id"}, "")
	require.Equal(t, "SELECT id FROM jobs WHERE tenant_id = $1", query)
	require.Equal(t, []any{tenantID}, args)
}
