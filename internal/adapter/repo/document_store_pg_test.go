package repo

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/domain"
	"foodshare/internal/sqlinline"
)

// execRecorder answers Exec with a fixed row count and remembers the call.
type execRecorder struct {
	rows  int
	query string
	args  []any
}

func (e *execRecorder) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	e.query, e.args = query, args
	return pgconn.NewCommandTag("UPDATE " + strconv.Itoa(e.rows)), nil
}

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not used")
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not used")
}

func TestBuildFindQuery(t *testing.T) {
	query, args, err := buildFindQuery(domain.CollectionDonations, domain.Query{
		Filters: []domain.Filter{
			{Path: "listing.food_type", Op: domain.OpContainsFold, Value: "50%_off"},
			{Path: "listing.expiration_date", Op: domain.OpLte, Value: "2026-10-19T00:00:00Z", Kind: domain.KindTime},
		},
		AnyOf: []domain.Filter{
			{Path: "listing.donor_id", Op: domain.OpEq, Value: "d1"},
			{Path: "form.recipient_id", Op: domain.OpEq, Value: "r1"},
		},
		Sort:  []domain.SortKey{{Path: "listing.quantity", Kind: domain.KindNumber, Desc: true}},
		Skip:  20,
		Limit: 10,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, sqlinline.QFindDocuments))
	assert.Contains(t, query, `(body #>> '{listing,food_type}') ilike $2::text escape '\'`)
	assert.Contains(t, query, `(body #>> '{listing,expiration_date}')::timestamptz <= $3::timestamptz`)
	assert.Contains(t, query, `and ((body #>> '{listing,donor_id}') = $4::text or (body #>> '{form,recipient_id}') = $5::text)`)
	assert.Contains(t, query, `order by (body #>> '{listing,quantity}')::double precision desc nulls last, created_at asc, id asc`)
	assert.Contains(t, query, "offset $6::int")
	assert.Contains(t, query, "limit $7::int")
	assert.Equal(t, []any{"donations", `%50\%\_off%`, "2026-10-19T00:00:00Z", "d1", "r1", 20, 10}, args)
}

func TestBuildFindQueryExists(t *testing.T) {
	query, args, err := buildFindQuery(domain.CollectionDonations, domain.Query{
		Filters: []domain.Filter{{Path: "receipt.receipt_id", Op: domain.OpExists}},
	})
	require.NoError(t, err)
	assert.Contains(t, query, `coalesce(jsonb_typeof(body #> '{receipt,receipt_id}'), 'null') <> 'null'`)
	assert.NotContains(t, query, "limit")
	assert.Equal(t, []any{"donations"}, args)
}

func TestBuildFindQueryRejectsInjection(t *testing.T) {
	for _, path := range []string{"", "listing.", "a}'; drop table documents; --", "Listing.ID"} {
		_, _, err := buildFindQuery(domain.CollectionDonations, domain.Query{
			Filters: []domain.Filter{{Path: path, Op: domain.OpEq, Value: "x"}},
		})
		assert.Error(t, err, path)
	}
	_, _, err := buildFindQuery(domain.CollectionDonations, domain.Query{
		Filters: []domain.Filter{{Path: "listing.id", Op: "regex", Value: "x"}},
	})
	assert.Error(t, err)
}

func TestDocumentStorePGSave(t *testing.T) {
	ctx := context.Background()

	t.Run("insert", func(t *testing.T) {
		exec := &execRecorder{rows: 1}
		doc := &domain.Document{Collection: domain.CollectionDonors, ID: "d1", Body: json.RawMessage(`{}`)}
		require.NoError(t, NewDocumentStore(exec).Save(ctx, doc))
		assert.Equal(t, sqlinline.QInsertDocument, exec.query)
		assert.Equal(t, int64(1), doc.Version)
	})

	t.Run("insert of existing id", func(t *testing.T) {
		exec := &execRecorder{rows: 0}
		doc := &domain.Document{Collection: domain.CollectionDonors, ID: "d1", Body: json.RawMessage(`{}`)}
		assert.ErrorIs(t, NewDocumentStore(exec).Save(ctx, doc), domain.ErrConflict)
		assert.Equal(t, int64(0), doc.Version)
	})

	t.Run("update", func(t *testing.T) {
		exec := &execRecorder{rows: 1}
		doc := &domain.Document{Collection: domain.CollectionDonors, ID: "d1", Version: 3, Body: json.RawMessage(`{}`)}
		require.NoError(t, NewDocumentStore(exec).Save(ctx, doc))
		assert.Equal(t, sqlinline.QUpdateDocument, exec.query)
		assert.Equal(t, int64(3), exec.args[3])
		assert.Equal(t, int64(4), doc.Version)
	})

	t.Run("stale update", func(t *testing.T) {
		exec := &execRecorder{rows: 0}
		doc := &domain.Document{Collection: domain.CollectionDonors, ID: "d1", Version: 3, Body: json.RawMessage(`{}`)}
		assert.ErrorIs(t, NewDocumentStore(exec).Save(ctx, doc), domain.ErrConflict)
		assert.Equal(t, int64(3), doc.Version)
	})

	t.Run("delete of missing document", func(t *testing.T) {
		exec := &execRecorder{rows: 0}
		assert.ErrorIs(t, NewDocumentStore(exec).Delete(ctx, domain.CollectionDonors, "d1"), domain.ErrNotFound)
	})
}
