// Package migrations holds the idempotent schema applied at startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`create table if not exists documents (
	collection text not null,
	id text not null,
	version bigint not null default 1,
	body jsonb not null,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now(),
	primary key (collection, id)
)`,
	`create index if not exists documents_listing_id_idx
	on documents ((body #>> '{listing,listing_id}'))
	where collection = 'donations'`,
	`create index if not exists documents_receipt_id_idx
	on documents ((body #>> '{receipt,receipt_id}'))
	where collection = 'donations'`,
	`create index if not exists documents_email_idx
	on documents (collection, lower(body ->> 'email'))`,
	`create table if not exists users (
	email text primary key,
	password_hash text not null,
	created_at timestamptz not null default now()
)`,
}

// Apply executes every statement in order. Statements are safe to re-run.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
