package supabase

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the tables and RPC functions. Every statement is
// idempotent, so it is safe to run on each deploy.
func ApplySchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply supabase schema: %w", err)
	}
	return nil
}
