package gedoc_test

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/vinicius-lino-figueiredo/gedoc"
	"github.com/vinicius-lino-figueiredo/gedoc/adapter/database"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

type M = map[string]any

var sizes = [...]int{1, 10, 100, 1_000, 10_000, 100_000}

func populated(b *testing.B, size int, schema domain.IndexList) gedoc.Collection {
	ctx := context.Background()
	db, err := gedoc.NewDB(database.WithSchema(map[string]domain.IndexList{"bench": schema}))
	if err != nil {
		b.Fatal(err)
	}
	c, err := db.GetCollection(ctx, "bench")
	if err != nil {
		b.Fatal(err)
	}
	for n := range size {
		if _, err := c.Insert(ctx, doc.New(doc.E{Key: "code", Value: doc.Int64(int64(n))}, doc.E{Key: "value", Value: doc.Int64(int64(n % 4))})); err != nil {
			b.Fatal(err)
		}
	}
	return c
}

func BenchmarkCreate(b *testing.B) {
	b.Run("InMemory=true", func(b *testing.B) {
		for b.Loop() {
			gedoc.NewDB()
		}
	})

	b.Run("InMemory=false", func(b *testing.B) {
		file := filepath.Join(b.TempDir(), "file.db")
		for b.Loop() {
			gedoc.NewDB(database.WithPath(file))
		}
	})
}

func BenchmarkInsert(b *testing.B) {
	ctx := context.Background()
	db, _ := gedoc.NewDB()
	c, _ := db.GetCollection(ctx, "bench")

	m := M{"jo": "jo"}
	for b.Loop() {
		gedoc.InsertValue(ctx, c, m)
	}
}

func BenchmarkInsertMany(b *testing.B) {
	ctx := context.Background()

	for _, size := range sizes[:4] {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			docs := make([]*doc.Document, size)
			for n := range size {
				docs[n] = doc.New(doc.E{Key: "part", Value: doc.Int64(int64(n + 1))})
			}

			for b.Loop() {
				b.StopTimer()
				db, _ := gedoc.NewDB()
				c, _ := db.GetCollection(ctx, "bench")
				b.StartTimer()
				if _, err := c.InsertMany(ctx, docs...); err != nil {
					b.FailNow()
				}
			}

			perItem := float64(b.Elapsed().Nanoseconds()) / float64(b.N*size)
			b.ReportMetric(perItem, "ns/item")
		})
	}
}

func BenchmarkFind(b *testing.B) {
	ctx := context.Background()

	for _, size := range sizes {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			scan := populated(b, size, domain.IndexList{})
			indexed := populated(b, size, domain.IndexList{
				Indexes: []domain.IndexDefinition{{Path: "code", Kind: domain.IndexUnique}},
			})

			for name, c := range map[string]gedoc.Collection{"FullScan": scan, "Index": indexed} {
				b.Run(name, func(b *testing.B) {
					for b.Loop() {
						b.StopTimer()
						f := query.Eq{Path: "code", Value: doc.Int64(int64(rand.Intn(size)))}
						b.StartTimer()
						if _, err := c.Find(ctx, f); err != nil {
							b.FailNow()
						}
					}
				})
			}
		})
	}
}

func BenchmarkCount(b *testing.B) {
	ctx := context.Background()
	f := query.Eq{Path: "value", Value: doc.Int64(1)}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			scan := populated(b, size, domain.IndexList{})
			indexed := populated(b, size, domain.IndexList{
				Indexes: []domain.IndexDefinition{{Path: "value", Kind: domain.IndexIndexed}},
			})

			b.Run("All", func(b *testing.B) {
				for b.Loop() {
					if _, err := scan.Count(ctx, nil); err != nil {
						b.FailNow()
					}
				}
			})

			for name, c := range map[string]gedoc.Collection{"FullScan": scan, "Index": indexed} {
				b.Run(name, func(b *testing.B) {
					for b.Loop() {
						if _, err := c.Count(ctx, f); err != nil {
							b.FailNow()
						}
					}
				})
			}
		})
	}
}

func BenchmarkUpdate(b *testing.B) {
	ctx := context.Background()
	u := query.Updates(query.SetOp{Path: "up", Value: doc.String("dated")})

	for _, size := range sizes {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			c := populated(b, size, domain.IndexList{})

			b.Run("Existing", func(b *testing.B) {
				for b.Loop() {
					b.StopTimer()
					f := query.Eq{Path: "code", Value: doc.Int64(int64(rand.Intn(size)))}
					b.StartTimer()
					if _, err := c.Update(ctx, f, u); err != nil {
						b.FailNow()
					}
				}
			})

			b.Run("NonExisting", func(b *testing.B) {
				f := query.Eq{Path: "code", Value: doc.Int64(int64(size + 12))}
				for b.Loop() {
					if _, err := c.Update(ctx, f, u); err != nil {
						b.FailNow()
					}
				}
			})
		})
	}
}

func BenchmarkFindWithSort(b *testing.B) {
	ctx := context.Background()

	for _, size := range sizes[:5] {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			c := populated(b, size, domain.IndexList{})
			for b.Loop() {
				if _, err := c.Find(ctx, nil, domain.WithSortDesc("value", "code")); err != nil {
					b.FailNow()
				}
			}
		})
	}
}

func BenchmarkDumpLoad(b *testing.B) {
	ctx := context.Background()

	for _, size := range sizes[:5] {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			c := populated(b, size, domain.IndexList{})
			blob, err := c.Dump(ctx)
			if err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				if err := c.Load(ctx, blob); err != nil {
					b.FailNow()
				}
			}
		})
	}
}
