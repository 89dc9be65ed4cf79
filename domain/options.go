package domain

// WithSkip sets the number of documents to skip in query results.
func WithSkip(s int) FindOption {
	return func(fo *FindOptions) {
		fo.Skip = s
	}
}

// WithLimit sets the maximum number of documents to return. Zero means no
// limit.
func WithLimit(l int) FindOption {
	return func(fo *FindOptions) {
		fo.Limit = l
	}
}

// WithSort appends sort keys. Earlier keys take precedence.
func WithSort(keys ...SortKey) FindOption {
	return func(fo *FindOptions) {
		fo.Sort = append(fo.Sort, keys...)
	}
}

// WithSortAsc appends ascending sort keys for each path.
func WithSortAsc(paths ...string) FindOption {
	return func(fo *FindOptions) {
		for _, p := range paths {
			fo.Sort = append(fo.Sort, Asc(p))
		}
	}
}

// WithSortDesc appends descending sort keys for each path.
func WithSortDesc(paths ...string) FindOption {
	return func(fo *FindOptions) {
		for _, p := range paths {
			fo.Sort = append(fo.Sort, Desc(p))
		}
	}
}

// WithFields restricts results to the given dotted paths. The _id field is
// always kept.
func WithFields(paths ...string) FindOption {
	return func(fo *FindOptions) {
		fo.Fields = append(fo.Fields, paths...)
	}
}

// FindOption configures query behavior through the functional options pattern.
type FindOption func(*FindOptions)

// FindOptions contains parameters for customizing query execution.
type FindOptions struct {
	// Skip specifies the number of documents to skip.
	Skip int
	// Limit specifies the maximum number of documents to return.
	Limit int
	// Sort specifies the sort order for results.
	Sort []SortKey
	// Fields lists the paths kept by the projection. Empty keeps all.
	Fields []string
}

// NewFindOptions applies opts over the zero value.
func NewFindOptions(opts ...FindOption) FindOptions {
	var fo FindOptions
	for _, opt := range opts {
		opt(&fo)
	}
	return fo
}
