package composables

import (
	"context"
	"fmt"

	"github.com/sanifleet/sanifleet/pkg/configuration"
)

// ApplyTenantRLS binds the context tenant to the transaction so row level
// security policies can filter on it. A tenant-scoped transaction without a
// tenant in context is an error: the query must never run unscoped.
func ApplyTenantRLS(ctx context.Context, tx Tx) error {
	return applyTenantRLS(ctx, tx, configuration.Use().RLSEnforce)
}

func applyTenantRLS(ctx context.Context, tx Tx, mode string) error {
	if mode != "enforce" {
		return nil
	}
	tenantID, err := UseTenantID(ctx)
	if err != nil {
		return fmt.Errorf("rls requires tenant in context: %w", err)
	}
	_, err = tx.Exec(ctx, "SELECT set_config('app.current_tenant', $1, true)", tenantID.String())
	if err != nil {
		return fmt.Errorf("failed to set rls tenant context: %w", err)
	}
	return nil
}
