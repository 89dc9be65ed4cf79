package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/config"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/database"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/parser"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

type options struct {
	dbPath     string
	configPath string
	verbose    bool
	where      []string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "gedoc",
		Short:         "Inspect gedoc database files",
		Long:          `A read only command-line interface to list, count, query and explain collections of a gedoc database file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug information to stderr")

	root.AddCommand(
		newCollectionsCmd(&opts),
		newCountCmd(&opts),
		newFindCmd(&opts),
		newExplainCmd(&opts),
		newIndexesCmd(&opts),
	)
	return root
}

// open loads the database. It is never closed, so the file is not written.
func (o *options) open(cmd *cobra.Command) (*database.Database, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var db *database.Database
	var err error
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		if o.dbPath != "" {
			cfg.Path = o.dbPath
		}
		db, err = database.NewFromConfig(cfg, database.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	} else {
		if o.dbPath == "" {
			return nil, errors.New("either --db or --config is required")
		}
		db, err = database.NewDatabase(database.WithPath(o.dbPath), database.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}
	if db.Path() == "" {
		return nil, errors.New("no database file configured")
	}
	if err := db.Open(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", db.Path(), err)
	}
	return db, nil
}

// collection returns an existing collection without creating it.
func (o *options) collection(cmd *cobra.Command, name string) (domain.Collection, error) {
	db, err := o.open(cmd)
	if err != nil {
		return nil, err
	}
	names, err := db.ListCollections(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if n == name {
			return db.GetCollection(cmd.Context(), name)
		}
	}
	return nil, fmt.Errorf("collection %q not found", name)
}

func (o *options) addWhere(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.where, "where", "w", nil, `filter as field:value or field:op:value, repeatable (e.g. "age:gt:30")`)
}

func newCollectionsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections and their sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := o.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			names, err := db.ListCollections(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				c, err := db.GetCollection(ctx, name)
				if err != nil {
					return err
				}
				n, err := c.Count(ctx, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, n)
			}
			return nil
		},
	}
}

func newCountCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <collection>",
		Short: "Count matching documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.collection(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := parser.NewParser().Parse(o.where...)
			if err != nil {
				return err
			}
			n, err := c.Count(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	o.addWhere(cmd)
	return cmd
}

func newFindCmd(o *options) *cobra.Command {
	var (
		sort   []string
		fields []string
		limit  int
		skip   int
	)
	cmd := &cobra.Command{
		Use:   "find <collection>",
		Short: "Print matching documents as extended JSON, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.collection(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := parser.NewParser().Parse(o.where...)
			if err != nil {
				return err
			}
			docs, err := c.Find(cmd.Context(), f,
				domain.WithSort(sortKeys(sort)...),
				domain.WithFields(fields...),
				domain.WithSkip(skip),
				domain.WithLimit(limit),
			)
			if err != nil {
				return err
			}
			return printDocuments(cmd.OutOrStdout(), docs)
		},
	}
	o.addWhere(cmd)
	cmd.Flags().StringSliceVarP(&sort, "sort", "s", nil, "sort paths, prefix with - for descending (e.g. -age,name)")
	cmd.Flags().StringSliceVarP(&fields, "fields", "f", nil, "paths to keep, _id is always kept")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of documents, 0 for all")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of documents to skip")
	return cmd
}

func sortKeys(paths []string) []domain.SortKey {
	res := make([]domain.SortKey, 0, len(paths))
	for _, p := range paths {
		if rest, ok := strings.CutPrefix(p, "-"); ok {
			res = append(res, domain.Desc(rest))
			continue
		}
		res = append(res, domain.Asc(strings.TrimPrefix(p, "+")))
	}
	return res
}

func printDocuments(w io.Writer, docs []*doc.Document) error {
	for _, d := range docs {
		b, err := bson.MarshalExtJSON(serializer.ToBSON(d), false, false)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

func newExplainCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <collection>",
		Short: "Describe the plan chosen for a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.collection(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := parser.NewParser().Parse(o.where...)
			if err != nil {
				return err
			}
			e, err := c.Explain(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), bson.D{
				{Key: "planType", Value: e.PlanType},
				{Key: "indexesUsed", Value: e.IndexesUsed},
				{Key: "estimatedCost", Value: e.EstimatedCost},
				{Key: "optimized", Value: e.Optimized},
				{Key: "details", Value: e.Details},
			})
		},
	}
	o.addWhere(cmd)
	return cmd
}

func newIndexesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes <collection>",
		Short: "Show the index configuration and the distinct keys of each index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.collection(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			l, err := c.Indexes(ctx)
			if err != nil {
				return err
			}
			indexes := bson.A{}
			for _, def := range l.Indexes {
				indexes = append(indexes, bson.D{
					{Key: "path", Value: def.Path},
					{Key: "name", Value: def.Name},
					{Key: "kind", Value: def.Kind.String()},
				})
			}
			res := bson.D{
				{Key: "indexes", Value: indexes},
				{Key: "text", Value: l.TextIndexes},
			}
			if s, ok := c.(interface {
				Stats(context.Context) (map[string]int, error)
			}); ok {
				stats, err := s.Stats(ctx)
				if err != nil {
					return err
				}
				res = append(res, bson.E{Key: "keys", Value: stats})
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := bson.MarshalExtJSONIndent(v, false, false, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
