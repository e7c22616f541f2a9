package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"foodshare/internal/domain"
	"foodshare/internal/infra"
	"foodshare/internal/sqlinline"
)

var fieldPathRegexp = regexp.MustCompile(`^[a-z_]+(\.[a-z_]+)*$`)

// DocumentStorePG implements domain.DocumentStore on a single jsonb table.
type DocumentStorePG struct {
	sql infra.SQLExecutor
}

// NewDocumentStore creates a PostgreSQL document store.
func NewDocumentStore(sql infra.SQLExecutor) *DocumentStorePG {
	return &DocumentStorePG{sql: sql}
}

// FindByID loads a single document by its identifier.
func (s *DocumentStorePG) FindByID(ctx context.Context, collection domain.Collection, id string) (*domain.Document, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectDocument, string(collection), id)
	doc := domain.Document{Collection: collection, ID: id}
	var body []byte
	if err := row.Scan(&doc.Version, &body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, collection, id)
		}
		return nil, err
	}
	doc.Body = body
	return &doc, nil
}

// FindOne returns the first document matching every filter.
func (s *DocumentStorePG) FindOne(ctx context.Context, collection domain.Collection, filters ...domain.Filter) (*domain.Document, error) {
	docs, err := s.FindMany(ctx, collection, domain.Query{Filters: filters, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, collection)
	}
	return &docs[0], nil
}

// FindMany runs a filtered, sorted and windowed query.
func (s *DocumentStorePG) FindMany(ctx context.Context, collection domain.Collection, q domain.Query) ([]domain.Document, error) {
	query, args, err := buildFindQuery(collection, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc := domain.Document{Collection: collection}
		var body []byte
		if err := rows.Scan(&doc.ID, &doc.Version, &body); err != nil {
			return nil, err
		}
		doc.Body = body
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Save inserts a new document (Version 0) or updates an existing one guarded
// by its version.
func (s *DocumentStorePG) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id required", domain.ErrValidation)
	}
	if doc.Version == 0 {
		tag, err := s.sql.Exec(ctx, sqlinline.QInsertDocument, string(doc.Collection), doc.ID, []byte(doc.Body))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s %s already exists", domain.ErrConflict, doc.Collection, doc.ID)
		}
		doc.Version = 1
		return nil
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QUpdateDocument, string(doc.Collection), doc.ID, []byte(doc.Body), doc.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s was modified concurrently", domain.ErrConflict, doc.Collection, doc.ID)
	}
	doc.Version++
	return nil
}

// Delete removes a document.
func (s *DocumentStorePG) Delete(ctx context.Context, collection domain.Collection, id string) error {
	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteDocument, string(collection), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, collection, id)
	}
	return nil
}

type findQueryBuilder struct {
	sb   strings.Builder
	args []any
}

func (b *findQueryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func buildFindQuery(collection domain.Collection, q domain.Query) (string, []any, error) {
	b := &findQueryBuilder{}
	b.sb.WriteString(sqlinline.QFindDocuments)
	b.arg(string(collection))

	for _, f := range q.Filters {
		cond, err := b.condition(f)
		if err != nil {
			return "", nil, err
		}
		b.sb.WriteString("\n  and ")
		b.sb.WriteString(cond)
	}
	if len(q.AnyOf) > 0 {
		conds := make([]string, 0, len(q.AnyOf))
		for _, f := range q.AnyOf {
			cond, err := b.condition(f)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, cond)
		}
		b.sb.WriteString("\n  and (")
		b.sb.WriteString(strings.Join(conds, " or "))
		b.sb.WriteString(")")
	}

	order := make([]string, 0, len(q.Sort)+2)
	for _, key := range q.Sort {
		expr, err := fieldExpr(key.Path)
		if err != nil {
			return "", nil, err
		}
		dir := "asc"
		if key.Desc {
			dir = "desc"
		}
		order = append(order, castExpr(expr, key.Kind)+" "+dir+" nulls last")
	}
	order = append(order, "created_at asc", "id asc")
	b.sb.WriteString("\norder by ")
	b.sb.WriteString(strings.Join(order, ", "))

	if q.Skip > 0 {
		b.sb.WriteString("\noffset " + b.arg(q.Skip) + "::int")
	}
	if q.Limit > 0 {
		b.sb.WriteString("\nlimit " + b.arg(q.Limit) + "::int")
	}
	b.sb.WriteString(";\n")
	return b.sb.String(), b.args, nil
}

func (b *findQueryBuilder) condition(f domain.Filter) (string, error) {
	expr, err := fieldExpr(f.Path)
	if err != nil {
		return "", err
	}
	switch f.Op {
	case domain.OpExists:
		return fmt.Sprintf("coalesce(jsonb_typeof(body #> '{%s}'), 'null') <> 'null'", pathElems(f.Path)), nil
	case domain.OpEq:
		return castExpr(expr, f.Kind) + " = " + castArg(b.arg(f.Value), f.Kind), nil
	case domain.OpLte:
		return castExpr(expr, f.Kind) + " <= " + castArg(b.arg(f.Value), f.Kind), nil
	case domain.OpContainsFold:
		pattern := "%" + escapeLike(fmt.Sprint(f.Value)) + "%"
		return expr + " ilike " + b.arg(pattern) + "::text escape '\\'", nil
	default:
		return "", fmt.Errorf("document store: unsupported filter op %q", f.Op)
	}
}

func fieldExpr(path string) (string, error) {
	if !fieldPathRegexp.MatchString(path) {
		return "", fmt.Errorf("document store: invalid field path %q", path)
	}
	return fmt.Sprintf("(body #>> '{%s}')", pathElems(path)), nil
}

func pathElems(path string) string {
	return strings.ReplaceAll(path, ".", ",")
}

func castExpr(expr string, kind domain.ValueKind) string {
	switch kind {
	case domain.KindNumber:
		return expr + "::double precision"
	case domain.KindTime:
		return expr + "::timestamptz"
	default:
		return expr
	}
}

func castArg(placeholder string, kind domain.ValueKind) string {
	switch kind {
	case domain.KindNumber:
		return placeholder + "::double precision"
	case domain.KindTime:
		return placeholder + "::timestamptz"
	default:
		return placeholder + "::text"
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var _ domain.DocumentStore = (*DocumentStorePG)(nil)
