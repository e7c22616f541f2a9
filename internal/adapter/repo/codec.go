package repo

import (
	"encoding/json"
	"fmt"

	"foodshare/internal/domain"
)

func decodeDocument[T any](doc *domain.Document) (*T, error) {
	var out T
	if err := json.Unmarshal(doc.Body, &out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", doc.Collection, doc.ID, err)
	}
	return &out, nil
}

func encodeDocument(collection domain.Collection, id string, version int64, v any) (*domain.Document, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", collection, id, err)
	}
	return &domain.Document{Collection: collection, ID: id, Version: version, Body: body}, nil
}

func textEq(path, value string) domain.Filter {
	return domain.Filter{Path: path, Op: domain.OpEq, Value: value, Kind: domain.KindText}
}

func exists(path string) domain.Filter {
	return domain.Filter{Path: path, Op: domain.OpExists}
}

func containsFold(path, value string) domain.Filter {
	return domain.Filter{Path: path, Op: domain.OpContainsFold, Value: value, Kind: domain.KindText}
}

func pageWindow(q *domain.Query, p domain.Page) {
	p = p.Normalize()
	q.Skip = p.Offset()
	q.Limit = p.Size
}
