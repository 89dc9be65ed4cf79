// Package gedoc provides an embeddable document database for Go.
//
// A [Database] holds named [Collection] values. Collections store ordered
// documents, keep regular and text indexes in sync with them and answer
// filters through a cost based optimizer that picks between full scans and
// index lookups. Whole databases are saved to a single file with an atomic
// replace.
//
// The basic usage starts with creating a database with [NewDB], or
// [OpenConfig] to read its settings from a YAML file.
package gedoc

import (
	"context"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/config"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/database"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/parser"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

var (
	// ErrConstraintViolated is returned when a write would break a unique
	// index, including the one every collection keeps on _id.
	ErrConstraintViolated = domain.ErrConstraintViolated
	// ErrConsistencyViolation is returned when a loaded document has no
	// _id.
	ErrConsistencyViolation = domain.ErrConsistencyViolation
	// ErrCannotModifyID is returned when an update would change the _id of
	// a stored document.
	ErrCannotModifyID = domain.ErrCannotModifyID
	// ErrCollectionName is returned for empty collection names.
	ErrCollectionName = domain.ErrCollectionName
)

// ErrInvalidArgument is returned for malformed filters, updates, options and
// documents.
type ErrInvalidArgument = domain.ErrInvalidArgument

// ErrIO wraps failures of the underlying storage.
type ErrIO = domain.ErrIO

// ErrDatafileName is returned when the database file name ends with a
// suffix reserved for the temporary and backup files.
type ErrDatafileName = domain.ErrDatafileName

// ErrCorruptSnapshot is returned when a database file cannot be decoded.
type ErrCorruptSnapshot = domain.ErrCorruptSnapshot

// ErrDocumentType is returned when a Go value cannot become a document.
type ErrDocumentType = domain.ErrDocumentType

// ErrDecode wraps failures to decode documents into Go values.
type ErrDecode = domain.ErrDecode

// ErrEncode wraps failures to encode documents for storage.
type ErrEncode = domain.ErrEncode

type (
	// Database is a named set of collections.
	Database = domain.Database
	// Collection is a set of indexed documents.
	Collection = domain.Collection
	// Document is an ordered set of fields.
	Document = doc.Document
	// Value is a single document value.
	Value = doc.Value
	// Filter selects documents.
	Filter = query.Filter
	// Update describes changes to documents.
	Update = query.Update
	// IndexList is the index configuration of a collection.
	IndexList = domain.IndexList
	// IndexDefinition describes a regular index.
	IndexDefinition = domain.IndexDefinition
	// FindOption configures Find, FindOne and FindPaginated.
	FindOption = domain.FindOption
	// PageCursor addresses a page of results.
	PageCursor = domain.PageCursor
	// Page holds a page of results.
	Page = domain.Page
	// Explanation describes the plan chosen for a filter.
	Explanation = domain.Explanation
)

// NewDB creates a database. Without [database.WithPath] it lives only in
// memory. Call [database.Database.Open] to read its file and
// [database.Database.Close] to save it.
func NewDB(options ...database.Option) (*database.Database, error) {
	return database.NewDatabase(options...)
}

// OpenConfig creates a database from the YAML file at path and loads its
// content.
func OpenConfig(ctx context.Context, path string, options ...database.Option) (*database.Database, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	db, err := database.NewFromConfig(cfg, options...)
	if err != nil {
		return nil, err
	}
	if err := db.Open(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// NewDocument converts maps with string keys and structs into a document,
// reading the gedoc struct tag.
func NewDocument(v any) (*Document, error) {
	return data.NewDocument(v)
}

// Decode fills target from a document or value.
func Decode(source any, target any) error {
	return decoder.NewDecoder().Decode(source, target)
}

// ParseFilter reads filters written as "field:value" or "field:op:value"
// and joins them with And.
func ParseFilter(strs ...string) (Filter, error) {
	return parser.NewParser().Parse(strs...)
}

// InsertValue converts v into a document and inserts it.
func InsertValue(ctx context.Context, c Collection, v any) (Value, error) {
	d, err := data.NewDocument(v)
	if err != nil {
		return doc.Null(), err
	}
	return c.Insert(ctx, d)
}

// FindAs runs [Collection.Find] and decodes every result into a T.
func FindAs[T any](ctx context.Context, c Collection, f Filter, opts ...FindOption) ([]T, error) {
	docs, err := c.Find(ctx, f, opts...)
	if err != nil {
		return nil, err
	}
	dec := decoder.NewDecoder()
	res := make([]T, len(docs))
	for n, d := range docs {
		if err := dec.Decode(d, &res[n]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// FindOneAs runs [Collection.FindOne] and decodes the result into a T. It
// reports false when nothing matches.
func FindOneAs[T any](ctx context.Context, c Collection, f Filter, opts ...FindOption) (T, bool, error) {
	var res T
	d, err := c.FindOne(ctx, f, opts...)
	if err != nil || d == nil {
		return res, false, err
	}
	if err := decoder.NewDecoder().Decode(d, &res); err != nil {
		return res, false, err
	}
	return res, true, nil
}
