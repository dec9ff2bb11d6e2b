package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// codec encodes every stored document and every api payload.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Collections names.
const (
	BooksCollection      = "books"
	LoansCollection      = "loans"
	UsersCollection      = "users"
	BookmarksCollection  = "bookmarks"
	RatingsCollection    = "ratings"
	LoanClaimsCollection = "loan_claims"
)

// Collections lists every collection known by the stores.
var Collections = []string{
	BooksCollection,
	LoansCollection,
	UsersCollection,
	BookmarksCollection,
	RatingsCollection,
	LoanClaimsCollection,
}

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")
)

// MutateFunc receives the current encoded document and returns its new
// encoded version. Returning an error aborts the mutation untouched.
type MutateFunc func(current []byte) ([]byte, error)

// Filter selects the documents whose field equals one of the values.
type Filter struct {
	Field  string
	Values []interface{}
}

// Eq builds a single value filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Values: []interface{}{value}}
}

// In builds a multiple values filter.
func In(field string, values ...interface{}) Filter {
	return Filter{Field: field, Values: values}
}

// Query describes a filtered and ordered collection scan.
// A zero Limit means no limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Document is a stored record with its raw encoded content.
type Document struct {
	ID   string
	Data []byte
}

// Decode unmarshals the document content into v.
func (d Document) Decode(v interface{}) error {
	return codec.Unmarshal(d.Data, v)
}

// DocumentStore is a document oriented storage. Each operation is atomic
// on a single document. There is no multi-documents transaction.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection, id string, doc interface{}) error
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Mutate(ctx context.Context, collection, id string, fn MutateFunc) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
}

// mergeFields returns the document with the given top-level fields replaced.
func mergeFields(current []byte, fields map[string]interface{}) ([]byte, error) {
	m := make(map[string]interface{})
	if err := codec.Unmarshal(current, &m); err != nil {
		return nil, err
	}
	for k, v := range fields {
		m[k] = v
	}
	return codec.Marshal(m)
}

type decodedDocument struct {
	doc    Document
	fields map[string]interface{}
}

// applyQuery filters, orders and limits a set of documents in memory.
// Both stores scan whole collections so they share this routine.
func applyQuery(docs []Document, q Query) ([]Document, error) {
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}

	selected := make([]decodedDocument, 0, len(docs))
	for _, doc := range docs {
		fields := make(map[string]interface{})
		if err := codec.Unmarshal(doc.Data, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
		if matchFilters(fields, filters) {
			selected = append(selected, decodedDocument{doc, fields})
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(selected, func(i, j int) bool {
			c := compareValues(selected[i].fields[q.OrderBy], selected[j].fields[q.OrderBy])
			if c == 0 {
				return selected[i].doc.ID < selected[j].doc.ID
			}
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(selected) > q.Limit {
		selected = selected[:q.Limit]
	}

	result := make([]Document, 0, len(selected))
	for _, s := range selected {
		result = append(result, s.doc)
	}
	return result, nil
}

// normalizeFilters passes every filter value through the codec so typed
// values (like LoanStatus) compare equal to their decoded form.
func normalizeFilters(filters []Filter) ([]Filter, error) {
	normalized := make([]Filter, 0, len(filters))
	for _, f := range filters {
		values := make([]interface{}, 0, len(f.Values))
		for _, v := range f.Values {
			raw, err := codec.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("invalid filter value on %s: %w", f.Field, err)
			}
			var nv interface{}
			if err = codec.Unmarshal(raw, &nv); err != nil {
				return nil, fmt.Errorf("invalid filter value on %s: %w", f.Field, err)
			}
			values = append(values, nv)
		}
		normalized = append(normalized, Filter{Field: f.Field, Values: values})
	}
	return normalized, nil
}

func matchFilters(fields map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		value := fields[f.Field]
		found := false
		for _, v := range f.Values {
			if reflect.DeepEqual(value, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// compareValues orders decoded json values. Null sorts first, and strings
// holding timestamps are compared as time instants.
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			at, aerr := time.Parse(time.RFC3339Nano, av)
			bt, berr := time.Parse(time.RFC3339Nano, bv)
			if aerr == nil && berr == nil {
				return at.Compare(bt)
			}
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// getDocument fetches and decodes a single document.
func getDocument[T any](ctx context.Context, store DocumentStore, collection, id string) (T, error) {
	var v T
	doc, err := store.Get(ctx, collection, id)
	if err != nil {
		return v, err
	}
	err = doc.Decode(&v)
	return v, err
}

// mutateDocument atomically applies change on the decoded document and
// returns the version which got committed. change may run several times.
func mutateDocument[T any](ctx context.Context, store DocumentStore, collection, id string, change func(*T) error) (T, error) {
	var committed T
	err := store.Mutate(ctx, collection, id, func(current []byte) ([]byte, error) {
		var v T
		if err := codec.Unmarshal(current, &v); err != nil {
			return nil, err
		}
		if err := change(&v); err != nil {
			return nil, err
		}
		committed = v
		return codec.Marshal(v)
	})
	return committed, err
}

// queryDocuments runs a query and decodes its results.
func queryDocuments[T any](ctx context.Context, store DocumentStore, collection string, q Query) ([]T, error) {
	docs, err := store.Query(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err = doc.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
		items = append(items, v)
	}
	return items, nil
}
