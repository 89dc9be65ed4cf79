package matcher

import (
	"log/slog"
	"time"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// WithComparer sets the comparer implementation for value comparisons during
// matching.
func WithComparer(c domain.Comparer) Option {
	return func(mo *Matcher) {
		mo.comparer = c
	}
}

// WithLogger sets the logger used to report unusable regular expressions.
func WithLogger(l *slog.Logger) Option {
	return func(mo *Matcher) {
		mo.logger = l
	}
}

// WithRegexTimeout bounds each regular expression evaluation. A timed out
// evaluation does not match.
func WithRegexTimeout(d time.Duration) Option {
	return func(mo *Matcher) {
		mo.regexTimeout = d
	}
}

// WithRegexCacheSize sets how many compiled regular expressions are kept.
// The least recently used pattern is dropped first.
func WithRegexCacheSize(n int) Option {
	return func(mo *Matcher) {
		mo.cacheSize = n
	}
}

// Option configures matcher behavior through the functional options pattern.
type Option func(*Matcher)
