// Package collection contains the default [domain.Collection]
// implementation.
//
// Documents live in a slot arena. Deleting a document leaves a tombstone in
// its slot and indexes refer to documents by slot, so slot order is the
// insertion order every result is returned in. Once tombstones take more
// than half of the arena it is compacted and every index rebuilt.
package collection

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"time"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/index"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/metrics"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/modifier"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/optimizer"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/querier"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/timegetter"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/ctxsync"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// Collection implements [domain.Collection].
type Collection struct {
	name        string
	lock        *ctxsync.RWMutex
	slots       []*doc.Document
	live        int
	indexes     *index.Manager
	indexList   domain.IndexList
	comparer    domain.Comparer
	matcher     domain.Matcher
	modifier    domain.Modifier
	querier     domain.Querier
	idGenerator domain.IDGenerator
	persistence domain.Persistence
	timeGetter  domain.TimeGetter
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewCollection returns an empty collection.
func NewCollection(name string, options ...Option) (domain.Collection, error) {
	if name == "" {
		return nil, domain.ErrCollectionName
	}
	c := Collection{
		name:        name,
		lock:        ctxsync.NewRWMutex(),
		comparer:    comparer.NewComparer(),
		idGenerator: idgenerator.NewIDGenerator(),
		timeGetter:  timegetter.NewTimeGetter(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(&c)
	}
	if c.matcher == nil {
		c.matcher = matcher.NewMatcher(
			matcher.WithComparer(c.comparer),
			matcher.WithLogger(c.logger),
		)
	}
	if c.modifier == nil {
		c.modifier = modifier.NewModifier(modifier.WithComparer(c.comparer))
	}
	if c.querier == nil {
		c.querier = querier.NewQuerier(querier.WithComparer(c.comparer))
	}
	if c.persistence == nil {
		var err error
		if c.persistence, err = persistence.NewPersistence(); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("collection", name)

	c.indexes = index.NewManager(index.WithManagerComparer(c.comparer))
	if err := c.indexes.Configure(c.indexList, nil); err != nil {
		return nil, err
	}
	c.metrics.SetDocuments(name, 0)
	return &c, nil
}

// Name implements [domain.Collection].
func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) observe(operation string, start time.Time) {
	c.metrics.RecordOperation(c.name, operation, c.timeGetter.GetTime().Sub(start))
}

func (c *Collection) all() iter.Seq2[int, *doc.Document] {
	return func(yield func(int, *doc.Document) bool) {
		for slot, d := range c.slots {
			if d == nil {
				continue
			}
			if !yield(slot, d) {
				return
			}
		}
	}
}

func (c *Collection) optimizer() *optimizer.Optimizer {
	return optimizer.NewOptimizer(
		optimizer.WithIndexes(c.indexes.Definitions()),
		optimizer.WithTextPaths(c.indexes.TextPaths()...),
		optimizer.WithDocumentCount(c.live),
	)
}

// match returns the slots of the documents satisfying f in slot order. The
// plan only narrows the candidates, every candidate is checked against the
// whole filter.
func (c *Collection) match(f query.Filter, limit int) ([]int, error) {
	if f != nil {
		if err := c.matcher.Validate(f); err != nil {
			return nil, err
		}
	}

	opt := c.optimizer()
	plan := opt.Optimize(f)
	candidates, err := c.candidates(plan)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordPlan(c.name, opt.Explain(plan).PlanType)

	res := make([]int, 0, len(candidates))
	for _, slot := range candidates {
		d := c.slots[slot]
		if d == nil || !c.matcher.Match(f, d) {
			continue
		}
		res = append(res, slot)
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res, nil
}

func (c *Collection) candidates(plan optimizer.Plan) ([]int, error) {
	switch p := plan.(type) {
	case optimizer.IndexScan:
		c.logger.Debug("query plan", "plan", domain.PlanIndexScan, "index", p.Index.Name, "expected", p.ExpectedResults)
		slots, ok, err := c.indexes.Lookup(p.IndexedFilter)
		if err != nil {
			return nil, err
		}
		if ok {
			return slots, nil
		}
	case optimizer.TextIndexScan:
		c.logger.Debug("query plan", "plan", domain.PlanTextIndexScan, "field", p.TextFilter.Path, "expected", p.ExpectedResults)
		if slots, ok := c.indexes.TextLookup(p.TextFilter); ok {
			return slots, nil
		}
	default:
		c.logger.Debug("query plan", "plan", domain.PlanFullScan, "documents", c.live)
	}
	res := make([]int, 0, c.live)
	for slot := range c.all() {
		res = append(res, slot)
	}
	return res, nil
}

func (c *Collection) documents(slots []int) []*doc.Document {
	res := make([]*doc.Document, len(slots))
	for n, slot := range slots {
		res[n] = c.slots[slot]
	}
	return res
}

func (c *Collection) clones(docs []*doc.Document) []*doc.Document {
	res := make([]*doc.Document, len(docs))
	for n, d := range docs {
		res[n] = d.Clone()
	}
	return res
}

// Insert implements [domain.Collection].
func (c *Collection) Insert(ctx context.Context, d *doc.Document) (doc.Value, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return doc.Null(), err
	}
	defer c.lock.Unlock()
	defer c.observe("insert", c.timeGetter.GetTime())

	stored, err := c.insert(d)
	if err != nil {
		return doc.Null(), err
	}
	id, _ := stored.ID()
	return id, nil
}

func (c *Collection) insert(d *doc.Document) (*doc.Document, error) {
	if d == nil {
		return nil, domain.ErrInvalidArgument{Reason: "cannot insert a nil document"}
	}
	d = d.Clone()
	if !d.Has(doc.IDField) {
		id, err := c.idGenerator.GenerateID()
		if err != nil {
			return nil, err
		}
		d = withID(id, d)
	}

	slot := len(c.slots)
	if err := c.indexes.Add(slot, d); err != nil {
		c.logger.Warn("insert rejected", "error", err)
		return nil, err
	}
	c.slots = append(c.slots, d)
	c.live++
	c.metrics.SetDocuments(c.name, c.live)
	return d, nil
}

// withID returns d with _id as its first field.
func withID(id doc.Value, d *doc.Document) *doc.Document {
	res := doc.New(doc.E{Key: doc.IDField, Value: id})
	for k, v := range d.Iter() {
		if k != doc.IDField {
			res.Set(k, v)
		}
	}
	return res
}

// InsertMany implements [domain.Collection]. Documents are inserted one by
// one and rejected documents are skipped. Only the context stops the batch.
func (c *Collection) InsertMany(ctx context.Context, docs ...*doc.Document) (int, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return 0, err
	}
	defer c.lock.Unlock()
	defer c.observe("insert_many", c.timeGetter.GetTime())

	var inserted int
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		if _, err := c.insert(d); err != nil {
			continue
		}
		inserted++
	}
	return inserted, nil
}

// Update implements [domain.Collection].
func (c *Collection) Update(ctx context.Context, f query.Filter, u query.Update) (int, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return 0, err
	}
	defer c.lock.Unlock()
	defer c.observe("update", c.timeGetter.GetTime())

	res, err := c.update(f, u, 0)
	return len(res), err
}

// UpdateOne implements [domain.Collection].
func (c *Collection) UpdateOne(ctx context.Context, f query.Filter, u query.Update) (bool, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return false, err
	}
	defer c.lock.Unlock()
	defer c.observe("update", c.timeGetter.GetTime())

	res, err := c.update(f, u, 1)
	return len(res) > 0, err
}

// UpdateOneReturning implements [domain.Collection].
func (c *Collection) UpdateOneReturning(ctx context.Context, f query.Filter, u query.Update) (*doc.Document, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.lock.Unlock()
	defer c.observe("update", c.timeGetter.GetTime())

	res, err := c.update(f, u, 1)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0].Clone(), nil
}

// update applies u to at most limit matches, all of them when limit is zero,
// and returns the stored results.
func (c *Collection) update(f query.Filter, u query.Update, limit int) ([]*doc.Document, error) {
	if err := c.modifier.Validate(u); err != nil {
		return nil, err
	}
	slots, err := c.match(f, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*doc.Document, 0, len(slots))
	for _, slot := range slots {
		updated, err := c.modifier.Modify(c.slots[slot], u)
		if err != nil {
			return res, err
		}
		if err := c.commit(slot, updated); err != nil {
			return res, err
		}
		res = append(res, updated)
	}

	if len(slots) > 0 || !u.Upsert {
		return res, nil
	}
	created, err := c.modifier.Upsert(f, u)
	if err != nil {
		return nil, err
	}
	stored, err := c.insert(created)
	if err != nil {
		return nil, err
	}
	return []*doc.Document{stored}, nil
}

// commit stores d in slot and moves its index entries. On failure the slot
// and the indexes keep the previous document.
func (c *Collection) commit(slot int, d *doc.Document) error {
	old := c.indexes.Capture(c.slots[slot])
	if err := c.indexes.Reindex(slot, old, d); err != nil {
		c.logger.Warn("update rejected", "error", err)
		return err
	}
	c.slots[slot] = d
	return nil
}

// Replace implements [domain.Collection].
func (c *Collection) Replace(ctx context.Context, f query.Filter, d *doc.Document, upsert bool) (bool, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return false, err
	}
	defer c.lock.Unlock()
	defer c.observe("replace", c.timeGetter.GetTime())

	if d == nil {
		return false, domain.ErrInvalidArgument{Reason: "cannot replace with a nil document"}
	}
	slots, err := c.match(f, 1)
	if err != nil {
		return false, err
	}

	if len(slots) > 0 {
		id, _ := c.slots[slots[0]].ID()
		if err := c.commit(slots[0], withID(id, d.Clone())); err != nil {
			return false, err
		}
		return true, nil
	}

	if !upsert {
		return false, nil
	}
	created := d.Clone()
	if id, ok := filterID(f); ok {
		created = withID(id, created)
	}
	if _, err := c.insert(created); err != nil {
		return false, err
	}
	return true, nil
}

// filterID returns the value of an _id equality among the top level
// conjuncts of f.
func filterID(f query.Filter) (doc.Value, bool) {
	if f == nil {
		return doc.Null(), false
	}
	for _, sub := range query.Conjuncts(f) {
		if eq, ok := sub.(query.Eq); ok && eq.Path == doc.IDField {
			return eq.Value, true
		}
	}
	return doc.Null(), false
}

// Delete implements [domain.Collection].
func (c *Collection) Delete(ctx context.Context, f query.Filter) (int, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return 0, err
	}
	defer c.lock.Unlock()
	defer c.observe("delete", c.timeGetter.GetTime())

	return c.delete(f, 0)
}

// DeleteOne implements [domain.Collection].
func (c *Collection) DeleteOne(ctx context.Context, f query.Filter) (bool, error) {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return false, err
	}
	defer c.lock.Unlock()
	defer c.observe("delete", c.timeGetter.GetTime())

	n, err := c.delete(f, 1)
	return n > 0, err
}

func (c *Collection) delete(f query.Filter, limit int) (int, error) {
	slots, err := c.match(f, limit)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, slot := range slots {
		if err := c.indexes.Remove(slot, c.slots[slot]); err != nil {
			errs = append(errs, err)
		}
		c.slots[slot] = nil
		c.live--
	}
	c.metrics.SetDocuments(c.name, c.live)
	if err := errors.Join(errs...); err != nil {
		c.logger.Error("index out of sync after delete", "error", err)
		return len(slots), c.rebuild()
	}
	if tombstones := len(c.slots) - c.live; tombstones > len(c.slots)/2 {
		return len(slots), c.rebuild()
	}
	return len(slots), nil
}

// rebuild drops the tombstones and reindexes the live documents.
func (c *Collection) rebuild() error {
	slots := make([]*doc.Document, 0, c.live)
	for _, d := range c.all() {
		slots = append(slots, d)
	}
	if err := c.indexes.Configure(c.indexList, enumerate(slots)); err != nil {
		return err
	}
	c.logger.Debug("arena compacted", "before", len(c.slots), "after", len(slots))
	c.slots = slots
	return nil
}

func enumerate(docs []*doc.Document) iter.Seq2[int, *doc.Document] {
	return func(yield func(int, *doc.Document) bool) {
		for n, d := range docs {
			if !yield(n, d) {
				return
			}
		}
	}
}

// Count implements [domain.Collection].
func (c *Collection) Count(ctx context.Context, f query.Filter) (int64, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return 0, err
	}
	defer c.lock.RUnlock()
	defer c.observe("count", c.timeGetter.GetTime())

	if f == nil {
		return int64(c.live), nil
	}
	slots, err := c.match(f, 0)
	return int64(len(slots)), err
}

// Exists implements [domain.Collection].
func (c *Collection) Exists(ctx context.Context, f query.Filter) (bool, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return false, err
	}
	defer c.lock.RUnlock()
	defer c.observe("count", c.timeGetter.GetTime())

	slots, err := c.match(f, 1)
	return len(slots) > 0, err
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, f query.Filter, opts ...domain.FindOption) ([]*doc.Document, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.lock.RUnlock()
	defer c.observe("find", c.timeGetter.GetTime())

	res, _, err := c.find(f, domain.NewFindOptions(opts...))
	return res, err
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, f query.Filter, opts ...domain.FindOption) (*doc.Document, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.lock.RUnlock()
	defer c.observe("find", c.timeGetter.GetTime())

	fo := domain.NewFindOptions(opts...)
	fo.Limit = 1
	res, _, err := c.find(f, fo)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

// FindPaginated implements [domain.Collection]. The cursor replaces any
// skip or limit option.
func (c *Collection) FindPaginated(ctx context.Context, cur domain.PageCursor, f query.Filter, opts ...domain.FindOption) (domain.Page, error) {
	if cur.Page < 1 {
		return domain.Page{}, domain.ErrInvalidArgument{Field: "page", Value: strconv.Itoa(cur.Page), Reason: "page must be at least 1"}
	}
	if cur.PageSize < 1 {
		return domain.Page{}, domain.ErrInvalidArgument{Field: "pageSize", Value: strconv.Itoa(cur.PageSize), Reason: "page size must be at least 1"}
	}
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return domain.Page{}, err
	}
	defer c.lock.RUnlock()
	defer c.observe("find", c.timeGetter.GetTime())

	fo := domain.NewFindOptions(opts...)
	fo.Skip = cur.Skip()
	fo.Limit = cur.PageSize
	items, total, err := c.find(f, fo)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{
		ItemCount: int64(total),
		Page:      cur.Page,
		PageSize:  cur.PageSize,
		Items:     items,
	}, nil
}

// find returns copies of the selected page of matches and the number of
// matches.
func (c *Collection) find(f query.Filter, fo domain.FindOptions) ([]*doc.Document, int, error) {
	if fo.Skip < 0 {
		return nil, 0, domain.ErrInvalidArgument{Field: "skip", Value: strconv.Itoa(fo.Skip), Reason: "skip cannot be negative"}
	}
	if fo.Limit < 0 {
		return nil, 0, domain.ErrInvalidArgument{Field: "limit", Value: strconv.Itoa(fo.Limit), Reason: "limit cannot be negative"}
	}
	for _, key := range fo.Sort {
		if key.Path == "" {
			return nil, 0, domain.ErrInvalidArgument{Operator: "sort", Reason: "sort path cannot be empty"}
		}
	}

	slots, err := c.match(f, 0)
	if err != nil {
		return nil, 0, err
	}
	res := c.querier.Query(c.documents(slots), fo)
	return c.clones(res), len(slots), nil
}

// Explain implements [domain.Collection].
func (c *Collection) Explain(ctx context.Context, f query.Filter) (domain.Explanation, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return domain.Explanation{}, err
	}
	defer c.lock.RUnlock()

	if f != nil {
		if err := c.matcher.Validate(f); err != nil {
			return domain.Explanation{}, err
		}
	}
	opt := c.optimizer()
	return opt.Explain(opt.Optimize(f)), nil
}

// SetIndexes implements [domain.Collection]. When the documents violate a
// new unique index the previous configuration is kept.
func (c *Collection) SetIndexes(ctx context.Context, l domain.IndexList) error {
	if err := c.lock.LockWithContext(ctx); err != nil {
		return err
	}
	defer c.lock.Unlock()
	defer c.observe("set_indexes", c.timeGetter.GetTime())

	if err := c.indexes.Configure(l, c.all()); err != nil {
		c.logger.Warn("index configuration rejected", "error", err)
		return err
	}
	c.indexList = c.indexes.IndexList()
	c.logger.Info("indexes configured", "indexes", len(l.Indexes), "text", len(l.TextIndexes))
	return nil
}

// Indexes implements [domain.Collection].
func (c *Collection) Indexes(ctx context.Context) (domain.IndexList, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return domain.IndexList{}, err
	}
	defer c.lock.RUnlock()

	return c.indexes.IndexList(), nil
}

// Stats returns the number of distinct keys per index. See
// [index.Manager.Stats].
func (c *Collection) Stats(ctx context.Context) (map[string]int, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.lock.RUnlock()

	return c.indexes.Stats(), nil
}

// Dump implements [domain.Collection].
func (c *Collection) Dump(ctx context.Context) ([]byte, error) {
	if err := c.lock.RLockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.lock.RUnlock()
	defer c.observe("dump", c.timeGetter.GetTime())

	docs := make([]*doc.Document, 0, c.live)
	for _, d := range c.all() {
		docs = append(docs, d)
	}
	return c.persistence.EncodeCollection(ctx, docs)
}

// Load implements [domain.Collection]. The blob is decoded before the
// collection is locked and a rejected blob leaves the collection untouched.
func (c *Collection) Load(ctx context.Context, blob []byte) error {
	docs, err := c.persistence.DecodeCollection(ctx, blob)
	if err != nil {
		return err
	}
	for n, d := range docs {
		if !d.Has(doc.IDField) {
			return fmt.Errorf("%w: document %d", domain.ErrConsistencyViolation, n)
		}
	}

	if err := c.lock.LockWithContext(ctx); err != nil {
		return err
	}
	defer c.lock.Unlock()
	defer c.observe("load", c.timeGetter.GetTime())

	if err := c.indexes.Configure(c.indexList, enumerate(docs)); err != nil {
		return err
	}
	c.slots = docs
	c.live = len(docs)
	c.metrics.SetDocuments(c.name, c.live)
	c.logger.Info("collection loaded", "documents", c.live)
	return nil
}
