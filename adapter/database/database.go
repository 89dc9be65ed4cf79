// Package database contains the default [domain.Database] implementation, a
// directory of named collections that can be saved to and restored from a
// single file.
package database

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/collection"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/metrics"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/ctxsync"
)

// NamespaceSeparator joins a namespace and a collection name.
const NamespaceSeparator = "_"

// Database implements [domain.Database].
type Database struct {
	lock              *ctxsync.Mutex
	collections       map[string]domain.Collection
	path              string
	schema            map[string]domain.IndexList
	persistence       domain.Persistence
	collectionOptions []collection.Option
	logger            *slog.Logger
	metrics           *metrics.Metrics
}

// NewDatabase returns an empty database. Without [WithPath] it only lives
// in memory.
func NewDatabase(options ...Option) (*Database, error) {
	d := Database{
		lock:        ctxsync.NewMutex(),
		collections: make(map[string]domain.Collection),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(&d)
	}
	if d.persistence == nil {
		var err error
		if d.persistence, err = persistence.NewPersistence(); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

// Path returns the file the database is opened from and closed to.
func (d *Database) Path() string {
	return d.path
}

func (d *Database) newCollection(name string) (domain.Collection, error) {
	options := slices.Concat([]collection.Option{
		collection.WithLogger(d.logger),
		collection.WithMetrics(d.metrics),
		collection.WithPersistence(d.persistence),
	}, d.collectionOptions, []collection.Option{
		collection.WithIndexes(d.schema[name]),
	})
	return collection.NewCollection(name, options...)
}

// GetCollection implements [domain.Database].
func (d *Database) GetCollection(ctx context.Context, name string) (domain.Collection, error) {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer d.lock.Unlock()

	if c, ok := d.collections[name]; ok {
		return c, nil
	}
	return d.create(name)
}

// CreateCollection implements [domain.Database].
func (d *Database) CreateCollection(ctx context.Context, name string) (domain.Collection, error) {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer d.lock.Unlock()

	return d.create(name)
}

func (d *Database) create(name string) (domain.Collection, error) {
	c, err := d.newCollection(name)
	if err != nil {
		return nil, err
	}
	if _, ok := d.collections[name]; ok {
		d.logger.Info("collection replaced", "collection", name)
	} else {
		d.logger.Debug("collection created", "collection", name)
	}
	d.collections[name] = c
	return c, nil
}

// DropCollection implements [domain.Database].
func (d *Database) DropCollection(ctx context.Context, name string) (bool, error) {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return false, err
	}
	defer d.lock.Unlock()

	if _, ok := d.collections[name]; !ok {
		return false, nil
	}
	delete(d.collections, name)
	d.metrics.Forget(name)
	d.logger.Info("collection dropped", "collection", name)
	return true, nil
}

// ListCollections implements [domain.Database].
func (d *Database) ListCollections(ctx context.Context) ([]string, error) {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer d.lock.Unlock()

	return slices.Sorted(maps.Keys(d.collections)), nil
}

// Open replaces the content of the database with the content of its file.
// A missing file leaves the database empty and nothing happens when there
// is no path.
func (d *Database) Open(ctx context.Context) error {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return err
	}
	defer d.lock.Unlock()

	if d.path == "" {
		return nil
	}
	blob, err := d.persistence.Load(ctx, d.path)
	if err != nil {
		return err
	}
	if blob == nil {
		d.logger.Info("database file not found, starting empty", "path", d.path)
		d.collections = make(map[string]domain.Collection)
		return nil
	}
	if err := d.load(ctx, blob); err != nil {
		return err
	}
	d.logger.Info("database opened", "path", d.path, "collections", len(d.collections))
	return nil
}

// Close writes every collection to the database file. The database stays
// usable afterwards.
func (d *Database) Close(ctx context.Context) error {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return err
	}
	defer d.lock.Unlock()

	if d.path == "" {
		return nil
	}
	blob, err := d.dump(ctx)
	if err != nil {
		return err
	}
	if err := d.persistence.Store(context.WithoutCancel(ctx), d.path, blob); err != nil {
		d.logger.Error("database not saved", "path", d.path, "error", err)
		return err
	}
	d.logger.Info("database saved", "path", d.path, "bytes", len(blob))
	return nil
}

// Dump serializes every collection into a single blob.
func (d *Database) Dump(ctx context.Context) ([]byte, error) {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer d.lock.Unlock()

	return d.dump(ctx)
}

func (d *Database) dump(ctx context.Context) ([]byte, error) {
	blobs := make(map[string][]byte, len(d.collections))
	for name, c := range d.collections {
		blob, err := c.Dump(ctx)
		if err != nil {
			return nil, err
		}
		blobs[name] = blob
	}
	return d.persistence.EncodeDatabase(ctx, blobs)
}

// Load replaces every collection with the ones in a blob produced by
// [Database.Dump]. On failure the current collections are kept.
func (d *Database) Load(ctx context.Context, blob []byte) error {
	if err := d.lock.LockWithContext(ctx); err != nil {
		return err
	}
	defer d.lock.Unlock()

	return d.load(ctx, blob)
}

func (d *Database) load(ctx context.Context, blob []byte) error {
	blobs, err := d.persistence.DecodeDatabase(ctx, blob)
	if err != nil {
		return err
	}
	collections := make(map[string]domain.Collection, len(blobs))
	for name, b := range blobs {
		c, err := d.newCollection(name)
		if err != nil {
			return err
		}
		if err := c.Load(ctx, b); err != nil {
			return err
		}
		collections[name] = c
	}
	for name := range d.collections {
		if _, ok := collections[name]; !ok {
			d.metrics.Forget(name)
		}
	}
	d.collections = collections
	return nil
}

// WithNamespace returns a view of d where every collection name is prefixed
// with ns and [NamespaceSeparator].
func (d *Database) WithNamespace(ns string) domain.Database {
	return &Namespace{db: d, prefix: ns + NamespaceSeparator}
}

// Namespace implements [domain.Database] over the collections of a
// [Database] sharing a prefix.
type Namespace struct {
	db     *Database
	prefix string
}

// GetCollection implements [domain.Database].
func (n *Namespace) GetCollection(ctx context.Context, name string) (domain.Collection, error) {
	if name == "" {
		return nil, domain.ErrCollectionName
	}
	return n.db.GetCollection(ctx, n.prefix+name)
}

// CreateCollection implements [domain.Database].
func (n *Namespace) CreateCollection(ctx context.Context, name string) (domain.Collection, error) {
	if name == "" {
		return nil, domain.ErrCollectionName
	}
	return n.db.CreateCollection(ctx, n.prefix+name)
}

// DropCollection implements [domain.Database].
func (n *Namespace) DropCollection(ctx context.Context, name string) (bool, error) {
	return n.db.DropCollection(ctx, n.prefix+name)
}

// ListCollections implements [domain.Database]. Names are returned without
// the prefix.
func (n *Namespace) ListCollections(ctx context.Context) ([]string, error) {
	all, err := n.db.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]string, 0, len(all))
	for _, name := range all {
		if rest, ok := strings.CutPrefix(name, n.prefix); ok {
			res = append(res, rest)
		}
	}
	return res, nil
}
