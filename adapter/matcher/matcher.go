// Package matcher contains the default implementation of [domain.Matcher],
// evaluating [query.Filter] trees against documents.
package matcher

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/analyzer"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

const (
	// DefaultRegexTimeout bounds a single regular expression evaluation.
	DefaultRegexTimeout = time.Second
	// DefaultRegexCacheSize is the number of compiled patterns kept.
	DefaultRegexCacheSize = 256
)

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer     domain.Comparer
	logger       *slog.Logger
	regexTimeout time.Duration
	cacheSize    int
	regexes      *lru.Cache // regexKey -> *regexp2.Regexp, nil when invalid
}

type regexKey struct {
	pattern string
	options string
}

// NewMatcher returns a new implementation of domain.Matcher.
func NewMatcher(options ...Option) domain.Matcher {
	m := &Matcher{
		comparer:     comparer.NewComparer(),
		logger:       slog.New(slog.DiscardHandler),
		regexTimeout: DefaultRegexTimeout,
		cacheSize:    DefaultRegexCacheSize,
	}
	for _, option := range options {
		option(m)
	}
	if m.cacheSize <= 0 {
		m.cacheSize = DefaultRegexCacheSize
	}
	// only fails for a non positive size
	m.regexes, _ = lru.New(m.cacheSize)
	return m
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(f query.Filter, d *doc.Document) bool {
	if f == nil {
		return true
	}
	switch f := f.(type) {
	case query.And:
		for _, sub := range f.Filters {
			if !m.Match(sub, d) {
				return false
			}
		}
		return true
	case query.Or:
		for _, sub := range f.Filters {
			if m.Match(sub, d) {
				return true
			}
		}
		return false
	case query.Not:
		return !m.Match(f.Filter, d)
	case query.Native:
		return false
	case query.Text:
		return m.matchText(f, d)
	case query.Eq:
		v, ok := d.GetEmbedded(f.Path)
		return ok && m.comparer.Equal(v, f.Value)
	case query.Ne:
		v, ok := d.GetEmbedded(f.Path)
		return !ok || !m.comparer.Equal(v, f.Value)
	case query.In:
		v, ok := d.GetEmbedded(f.Path)
		return ok && m.contains(f.Values, v)
	case query.Nin:
		v, ok := d.GetEmbedded(f.Path)
		return !ok || !m.contains(f.Values, v)
	case query.Comp:
		v, ok := d.GetEmbedded(f.Path)
		return ok && m.compare(f.Op, v, f.Value)
	case query.ArrCont:
		return m.arrayContains(d, f.Path, f.Value)
	case query.ArrNotCont:
		return !m.arrayContains(d, f.Path, f.Value)
	case query.ArrSize:
		arr, ok := m.array(d, f.Path)
		return ok && len(arr) == f.Size
	case query.ArrComp:
		arr, ok := m.array(d, f.Path)
		return ok && m.arrayCompare(f.Op, arr, f.Values)
	case query.Regex:
		s, ok := m.str(d, f.Path)
		return ok && m.matchRegex(f, s)
	case query.FieldText:
		s, ok := m.str(d, f.Path)
		return ok && analyzer.ContainsAll(s, f.Term)
	}
	return false
}

func (m *Matcher) contains(values []doc.Value, v doc.Value) bool {
	for _, candidate := range values {
		if m.comparer.Equal(candidate, v) {
			return true
		}
	}
	return false
}

func (m *Matcher) compare(op query.CompOp, a, b doc.Value) bool {
	c := m.comparer.Compare(a, b)
	switch op {
	case query.GT:
		return c > 0
	case query.GTE:
		return c >= 0
	case query.LT:
		return c < 0
	case query.LTE:
		return c <= 0
	}
	return false
}

func (m *Matcher) array(d *doc.Document, path string) ([]doc.Value, bool) {
	v, ok := d.GetEmbedded(path)
	if !ok {
		return nil, false
	}
	return v.AsArray()
}

func (m *Matcher) str(d *doc.Document, path string) (string, bool) {
	v, ok := d.GetEmbedded(path)
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (m *Matcher) arrayContains(d *doc.Document, path string, v doc.Value) bool {
	arr, ok := m.array(d, path)
	return ok && m.contains(arr, v)
}

// arrayCompare treats both sides as sets of distinct values.
func (m *Matcher) arrayCompare(op query.ArrayOp, field, operand []doc.Value) bool {
	field = m.distinct(field)
	operand = m.distinct(operand)

	common := 0
	for _, v := range operand {
		if m.contains(field, v) {
			common++
		}
	}

	switch op {
	case query.ArrAny:
		return common > 0
	case query.ArrNone:
		return common == 0
	case query.ArrAll:
		return common == len(operand)
	case query.ArrSet:
		return common == len(operand) && common == len(field)
	}
	return false
}

func (m *Matcher) distinct(values []doc.Value) []doc.Value {
	res := make([]doc.Value, 0, len(values))
	for _, v := range values {
		if !m.contains(res, v) {
			res = append(res, v)
		}
	}
	return res
}

func (m *Matcher) matchText(f query.Text, d *doc.Document) bool {
	if len(f.Fields) > 0 {
		for _, path := range f.Fields {
			if s, ok := m.str(d, path); ok && analyzer.ContainsAll(s, f.Term) {
				return true
			}
		}
		return false
	}
	for _, v := range d.Iter() {
		if s, ok := v.AsString(); ok && analyzer.ContainsAll(s, f.Term) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchRegex(f query.Regex, s string) bool {
	re := m.regex(f.Pattern, f.Options)
	if re == nil {
		return false
	}
	ok, err := re.MatchString(s)
	if err != nil {
		m.logger.Warn("regex evaluation failed",
			slog.String("field", f.Path),
			slog.String("pattern", f.Pattern),
			slog.Any("error", err),
		)
		return false
	}
	return ok
}

// regex returns the compiled pattern, or nil when it cannot be compiled.
func (m *Matcher) regex(pattern, options string) *regexp2.Regexp {
	key := regexKey{pattern: pattern, options: options}
	if cached, ok := m.regexes.Get(key); ok {
		return cached.(*regexp2.Regexp)
	}

	re, err := m.compile(pattern, options)
	if err != nil {
		m.logger.Warn("invalid regex never matches",
			slog.String("pattern", pattern),
			slog.String("options", options),
			slog.Any("error", err),
		)
		re = nil
	}
	m.regexes.Add(key, re)
	return re
}

func (m *Matcher) compile(pattern, options string) (*regexp2.Regexp, error) {
	var opts regexp2.RegexOptions
	for _, o := range options {
		switch o {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		default:
			return nil, fmt.Errorf("unknown regex option %q", o)
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = m.regexTimeout
	return re, nil
}

// Validate implements [domain.Matcher].
func (m *Matcher) Validate(f query.Filter) error {
	switch f := f.(type) {
	case nil:
		return domain.ErrInvalidArgument{Reason: "nil filter"}
	case query.And:
		return m.validateAll(f.Filters)
	case query.Or:
		return m.validateAll(f.Filters)
	case query.Not:
		return m.Validate(f.Filter)
	case query.Native:
		return domain.ErrInvalidArgument{
			Operator: "native",
			Value:    fmt.Sprintf("%v", f.Value),
			Reason:   "native filters cannot be evaluated in-process",
		}
	case query.Text:
		for _, path := range f.Fields {
			if err := m.validatePath(path, "text"); err != nil {
				return err
			}
		}
		return nil
	case query.Comp:
		if f.Op < query.GT || f.Op > query.LTE {
			return domain.ErrInvalidArgument{Field: f.Path, Operator: f.Op.String(), Reason: "unknown comparison"}
		}
	case query.ArrComp:
		if f.Op < query.ArrAny || f.Op > query.ArrSet {
			return domain.ErrInvalidArgument{Field: f.Path, Operator: f.Op.String(), Reason: "unknown array comparison"}
		}
	case query.ArrSize:
		if f.Size < 0 {
			return domain.ErrInvalidArgument{Field: f.Path, Operator: "size", Value: fmt.Sprint(f.Size), Reason: "size cannot be negative"}
		}
	}
	if ff, ok := f.(query.FieldFilter); ok {
		return m.validatePath(ff.FieldPath(), fmt.Sprintf("%T", f))
	}
	return nil
}

func (m *Matcher) validateAll(filters []query.Filter) error {
	for _, sub := range filters {
		if err := m.Validate(sub); err != nil {
			return err
		}
	}
	return nil
}

func (m *Matcher) validatePath(path, operator string) error {
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		return domain.ErrInvalidArgument{
			Field:    path,
			Operator: strings.TrimPrefix(operator, "query."),
			Reason:   "invalid field path",
		}
	}
	return nil
}
