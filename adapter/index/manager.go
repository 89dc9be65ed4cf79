package index

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// Manager keeps every index of a collection in sync with its documents.
type Manager struct {
	comparer domain.Comparer
	list     domain.IndexList
	indexes  map[string]*Index
	paths    []string
	text     map[string]*TextIndex
	textPath []string
}

// Snapshot holds the indexed values of a document captured before it
// changes.
type Snapshot struct {
	values map[string]doc.Value
	texts  map[string]string
}

// NewManager returns a manager holding only the _id index.
func NewManager(options ...ManagerOption) *Manager {
	m := &Manager{
		comparer: comparer.NewComparer(),
	}
	for _, option := range options {
		option(m)
	}
	_ = m.Configure(domain.IndexList{}, nil)
	return m
}

// Configure discards every index, builds the ones in l and fills them with
// docs. On failure the previous configuration is kept.
func (m *Manager) Configure(l domain.IndexList, docs iter.Seq2[int, *doc.Document]) error {
	indexes := map[string]*Index{
		doc.IDField: NewIndex(domain.IndexDefinition{
			Path: doc.IDField,
			Name: domain.IDIndexName,
			Kind: domain.IndexUnique,
		}, WithComparer(m.comparer)),
	}
	paths := []string{doc.IDField}

	for _, def := range l.Indexes {
		if def.Path == "" {
			return domain.ErrInvalidArgument{Field: def.Path, Operator: "index", Reason: "index path cannot be empty"}
		}
		if def.Kind == domain.IndexNone || def.Path == doc.IDField {
			continue
		}
		if def.Name == "" {
			def.Name = def.Path + "_1"
		}
		if !slices.Contains(paths, def.Path) {
			paths = append(paths, def.Path)
		}
		indexes[def.Path] = NewIndex(def, WithComparer(m.comparer))
	}

	text := make(map[string]*TextIndex, len(l.TextIndexes))
	var textPaths []string
	for _, path := range l.TextIndexes {
		if path == "" {
			return domain.ErrInvalidArgument{Operator: "text index", Reason: "text index path cannot be empty"}
		}
		if _, ok := text[path]; ok {
			continue
		}
		text[path] = NewTextIndex(path)
		textPaths = append(textPaths, path)
	}

	next := &Manager{
		comparer: m.comparer,
		list:     l,
		indexes:  indexes,
		paths:    paths,
		text:     text,
		textPath: textPaths,
	}
	if docs != nil {
		for slot, d := range docs {
			if err := next.Add(slot, d); err != nil {
				return err
			}
		}
	}

	*m = *next
	return nil
}

// IndexList returns the configuration given to [Manager.Configure].
func (m *Manager) IndexList() domain.IndexList {
	return domain.IndexList{
		Indexes:     slices.Clone(m.list.Indexes),
		TextIndexes: slices.Clone(m.list.TextIndexes),
	}
}

// Definitions returns the definition of every regular index by path,
// including the implicit _id index.
func (m *Manager) Definitions() map[string]domain.IndexDefinition {
	res := make(map[string]domain.IndexDefinition, len(m.indexes))
	for path, i := range m.indexes {
		res[path] = i.Definition()
	}
	return res
}

// TextPaths returns the text indexed paths in configuration order.
func (m *Manager) TextPaths() []string {
	return slices.Clone(m.textPath)
}

// Add indexes d under slot. If any regular index rejects it, the entries
// already added are removed.
func (m *Manager) Add(slot int, d *doc.Document) error {
	added := make([]string, 0, len(m.paths))
	for _, path := range m.paths {
		i := m.indexes[path]
		key, ok := i.Key(d)
		if !ok {
			continue
		}
		if err := i.Insert(slot, key); err != nil {
			m.rollback(slot, d, added)
			return err
		}
		added = append(added, path)
	}

	for _, path := range m.textPath {
		t := m.text[path]
		if s, ok := t.Text(d); ok {
			t.Add(slot, s)
		}
	}
	return nil
}

func (m *Manager) rollback(slot int, d *doc.Document, paths []string) {
	for _, path := range paths {
		i := m.indexes[path]
		key, _ := i.Key(d)
		_ = i.Remove(slot, key)
	}
}

// Remove drops every entry of d under slot.
func (m *Manager) Remove(slot int, d *doc.Document) error {
	return m.RemoveSnapshot(slot, m.Capture(d))
}

// RemoveSnapshot drops the entries recorded in s under slot.
func (m *Manager) RemoveSnapshot(slot int, s Snapshot) error {
	_, err := m.removeSnapshot(slot, s)
	return err
}

// removeSnapshot returns the part of s that was actually removed, so a
// partial failure can be undone.
func (m *Manager) removeSnapshot(slot int, s Snapshot) (Snapshot, error) {
	removed := Snapshot{
		values: make(map[string]doc.Value, len(s.values)),
		texts:  make(map[string]string, len(s.texts)),
	}
	var errs []error
	for path, key := range s.values {
		i, ok := m.indexes[path]
		if !ok {
			continue
		}
		if err := i.Remove(slot, key); err != nil {
			errs = append(errs, fmt.Errorf("index %q: %w", path, err))
			continue
		}
		removed.values[path] = key
	}
	for path, text := range s.texts {
		if t, ok := m.text[path]; ok {
			t.Remove(slot, text)
			removed.texts[path] = text
		}
	}
	return removed, errors.Join(errs...)
}

// Capture records the values of d at every indexed path.
func (m *Manager) Capture(d *doc.Document) Snapshot {
	s := Snapshot{
		values: make(map[string]doc.Value, len(m.indexes)),
		texts:  make(map[string]string, len(m.text)),
	}
	for path, i := range m.indexes {
		if key, ok := i.Key(d); ok {
			s.values[path] = key.Clone()
		}
	}
	for path, t := range m.text {
		if text, ok := t.Text(d); ok {
			s.texts[path] = text
		}
	}
	return s
}

// Reindex moves slot from the entries captured in old to the values of d.
// If any step fails, the old entries are restored.
func (m *Manager) Reindex(slot int, old Snapshot, d *doc.Document) error {
	removed, err := m.removeSnapshot(slot, old)
	if err != nil {
		m.restore(slot, removed)
		return err
	}
	if err := m.Add(slot, d); err != nil {
		m.restore(slot, old)
		return err
	}
	return nil
}

func (m *Manager) restore(slot int, s Snapshot) {
	for path, key := range s.values {
		_ = m.indexes[path].Insert(slot, key)
	}
	for path, text := range s.texts {
		m.text[path].Add(slot, text)
	}
}

// Lookup returns the slots that may satisfy f using the regular index on
// its path. It reports false when f cannot be answered by an index.
func (m *Manager) Lookup(f query.FieldFilter) ([]int, bool, error) {
	i, ok := m.indexes[f.FieldPath()]
	if !ok {
		return nil, false, nil
	}

	var slots []int
	var err error
	switch f := f.(type) {
	case query.Eq:
		slots, err = i.Matching(f.Value)
	case query.In:
		slots, err = i.Matching(f.Values...)
	case query.Comp:
		bound := &Bound{Value: f.Value, IncludeEqual: f.Op == query.GTE || f.Op == query.LTE}
		if f.Op == query.GT || f.Op == query.GTE {
			slots, err = i.Between(bound, nil)
		} else {
			slots, err = i.Between(nil, bound)
		}
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return slots, true, nil
}

// TextLookup returns the slots holding every token of f.Term at f.Path. It
// reports false when the path has no text index.
func (m *Manager) TextLookup(f query.FieldText) ([]int, bool) {
	t, ok := m.text[f.Path]
	if !ok {
		return nil, false
	}
	return t.Lookup(f.Term), true
}

// Stats returns the number of distinct keys of each regular index and of
// distinct tokens of each text index, by index name or text path.
func (m *Manager) Stats() map[string]int {
	res := make(map[string]int, len(m.indexes)+len(m.text))
	for _, i := range m.indexes {
		res[i.Definition().Name] = i.NumberOfKeys()
	}
	for path, t := range m.text {
		res[path] = t.Tokens()
	}
	return res
}
