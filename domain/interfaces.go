// Package domain contains the interfaces, entities, options and errors shared
// by the gedoc adapters.
//
// Adapters implement the interfaces declared here and receive each other
// through functional options, so every piece can be replaced in tests.
package domain

import (
	"context"
	"os"
	"time"

	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// Comparer provides the total order used by filters, indexes and sorting.
type Comparer interface {
	// Compare returns a negative number, zero or a positive number when a
	// is lower than, equal to or greater than b.
	Compare(a, b doc.Value) int
	// Equal reports whether Compare(a, b) is zero.
	Equal(a, b doc.Value) bool
}

// Matcher evaluates filters against documents.
type Matcher interface {
	// Match reports whether d satisfies f. A nil filter matches all.
	Match(f query.Filter, d *doc.Document) bool
	// Validate rejects filters that cannot be evaluated.
	Validate(f query.Filter) error
}

// Modifier applies updates.
type Modifier interface {
	// Modify returns a modified copy of d. SetOnInsert operations are
	// ignored.
	Modify(d *doc.Document, u query.Update) (*doc.Document, error)
	// Upsert builds the document inserted when an upsert matches nothing.
	Upsert(f query.Filter, u query.Update) (*doc.Document, error)
	// Validate rejects updates that cannot be applied to any document.
	Validate(u query.Update) error
}

// Projector keeps only the selected fields of documents.
type Projector interface {
	// Project returns projected copies of docs. Empty fields keep all.
	Project(docs []*doc.Document, fields []string) []*doc.Document
}

// Querier orders, slices and projects matched documents.
type Querier interface {
	// Query applies sort, skip, limit and projection in that order.
	Query(docs []*doc.Document, opts FindOptions) []*doc.Document
}

// Serializer converts documents to bytes for storage.
type Serializer interface {
	// Serialize converts a document to bytes for persistence.
	Serialize(context.Context, *doc.Document) ([]byte, error)
}

// Deserializer converts bytes back to documents.
type Deserializer interface {
	// Deserialize converts bytes back to a document.
	Deserialize(context.Context, []byte) (*doc.Document, error)
}

// Storage provides low-level file operations with crash-safety guarantees.
type Storage interface {
	// Exists checks if a file exists.
	Exists(string) (bool, error)
	// ReadFile reads a whole file.
	ReadFile(context.Context, string) ([]byte, error)
	// EnsureParentDirectoryExists creates parent directories if needed.
	EnsureParentDirectoryExists(string, os.FileMode) error
	// CrashSafeWriteFile atomically replaces a file, keeping a backup of
	// the previous content.
	CrashSafeWriteFile(context.Context, string, []byte, os.FileMode, os.FileMode) error
	// Remove deletes a file.
	Remove(string) error
}

// Persistence turns collections and databases into blobs and moves those
// blobs in and out of storage.
type Persistence interface {
	// EncodeCollection serializes an ordered document list.
	EncodeCollection(context.Context, []*doc.Document) ([]byte, error)
	// DecodeCollection reverses EncodeCollection.
	DecodeCollection(context.Context, []byte) ([]*doc.Document, error)
	// EncodeDatabase serializes collection blobs by name.
	EncodeDatabase(context.Context, map[string][]byte) ([]byte, error)
	// DecodeDatabase reverses EncodeDatabase.
	DecodeDatabase(context.Context, []byte) (map[string][]byte, error)
	// Store atomically replaces the file at path with data.
	Store(ctx context.Context, path string, data []byte) error
	// Load reads the file at path. A missing file yields nil and no error.
	Load(ctx context.Context, path string) ([]byte, error)
}

// IDGenerator creates identifiers for documents inserted without _id.
type IDGenerator interface {
	// GenerateID returns a new identifier.
	GenerateID() (doc.Value, error)
}

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(any, any) error
}

// DocumentFactory converts Go values into documents.
type DocumentFactory func(any) (*doc.Document, error)

// TimeGetter provides current time for timing operations.
type TimeGetter interface {
	// GetTime returns the current time.
	GetTime() time.Time
}

// Collection is a set of documents with indexes, queried through filters.
//
// All methods are safe for concurrent use. Reads share the collection while
// writes hold it exclusively. The context only bounds the wait for the
// collection lock.
type Collection interface {
	// Name returns the collection name.
	Name() string
	// Insert stores a copy of d, generating an _id when absent, and
	// returns the _id.
	Insert(ctx context.Context, d *doc.Document) (doc.Value, error)
	// InsertMany inserts docs one by one and returns how many were stored.
	InsertMany(ctx context.Context, docs ...*doc.Document) (int, error)
	// Update applies u to every match and returns how many changed.
	Update(ctx context.Context, f query.Filter, u query.Update) (int, error)
	// UpdateOne applies u to the first match.
	UpdateOne(ctx context.Context, f query.Filter, u query.Update) (bool, error)
	// UpdateOneReturning applies u to the first match and returns the
	// resulting document, or nil.
	UpdateOneReturning(ctx context.Context, f query.Filter, u query.Update) (*doc.Document, error)
	// Replace swaps the content of the first match, keeping its _id.
	Replace(ctx context.Context, f query.Filter, d *doc.Document, upsert bool) (bool, error)
	// Delete removes every match and returns how many were removed.
	Delete(ctx context.Context, f query.Filter) (int, error)
	// DeleteOne removes the first match.
	DeleteOne(ctx context.Context, f query.Filter) (bool, error)
	// Count returns the number of matches. A nil filter counts all.
	Count(ctx context.Context, f query.Filter) (int64, error)
	// Exists reports whether anything matches.
	Exists(ctx context.Context, f query.Filter) (bool, error)
	// Find returns copies of the matches.
	Find(ctx context.Context, f query.Filter, opts ...FindOption) ([]*doc.Document, error)
	// FindOne returns the first match or nil.
	FindOne(ctx context.Context, f query.Filter, opts ...FindOption) (*doc.Document, error)
	// FindPaginated returns the page addressed by c.
	FindPaginated(ctx context.Context, c PageCursor, f query.Filter, opts ...FindOption) (Page, error)
	// Explain describes the plan that would run for f.
	Explain(ctx context.Context, f query.Filter) (Explanation, error)
	// SetIndexes replaces the index configuration and rebuilds indexes.
	SetIndexes(ctx context.Context, l IndexList) error
	// Indexes returns the current index configuration.
	Indexes(ctx context.Context) (IndexList, error)
	// Dump serializes the documents in insertion order.
	Dump(ctx context.Context) ([]byte, error)
	// Load replaces the content with a blob produced by Dump.
	Load(ctx context.Context, blob []byte) error
}

// Database is a named set of collections.
type Database interface {
	// GetCollection returns the named collection, creating it if needed.
	GetCollection(ctx context.Context, name string) (Collection, error)
	// CreateCollection creates an empty collection, replacing any
	// existing one with the same name.
	CreateCollection(ctx context.Context, name string) (Collection, error)
	// DropCollection removes a collection and reports whether it existed.
	DropCollection(ctx context.Context, name string) (bool, error)
	// ListCollections returns collection names in lexical order.
	ListCollections(ctx context.Context) ([]string, error)
}
