// Package config reads the YAML file describing a database: where it is
// stored, how snapshots are compressed, how identifiers are generated and
// which indexes each collection keeps.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("dottedpath", validateDottedPath)
}

// validateDottedPath accepts non empty paths without empty segments.
func validateDottedPath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	return path != "" && !strings.HasPrefix(path, ".") && !strings.HasSuffix(path, ".") && !strings.Contains(path, "..")
}

// Config is the content of a configuration file.
type Config struct {
	Path        string                      `yaml:"path"`
	Compression string                      `yaml:"compression" validate:"omitempty,oneof=none zstd"`
	IDGenerator string                      `yaml:"idGenerator" validate:"omitempty,oneof=objectid uuid"`
	Collections map[string]CollectionConfig `yaml:"collections" validate:"dive,keys,required,endkeys"`
}

// CollectionConfig lists the indexes of a collection.
type CollectionConfig struct {
	Indexes []IndexConfig `yaml:"indexes" validate:"dive"`
	Text    []string      `yaml:"text" validate:"dive,dottedpath"`
}

// IndexConfig describes a regular index. Kind defaults to indexed.
type IndexConfig struct {
	Path string `yaml:"path" validate:"dottedpath"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind" validate:"omitempty,oneof=none indexed unique NONE INDEXED UNIQUE"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrIO{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return Read(f)
}

// Parse reads and validates a configuration held in memory.
func Parse(data []byte) (*Config, error) {
	return Read(bytes.NewReader(data))
}

// Read reads and validates a configuration. Unknown keys are rejected.
func Read(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			first := errs[0]
			return domain.ErrInvalidArgument{
				Field:  first.Namespace(),
				Value:  fmt.Sprintf("%q", fmt.Sprint(first.Value())),
				Reason: "failed on " + first.Tag(),
			}
		}
		return err
	}
	return nil
}

// Schema returns the index configuration of every collection.
func (c *Config) Schema() map[string]domain.IndexList {
	res := make(map[string]domain.IndexList, len(c.Collections))
	for name, coll := range c.Collections {
		l := domain.IndexList{
			Indexes:     make([]domain.IndexDefinition, 0, len(coll.Indexes)),
			TextIndexes: append([]string(nil), coll.Text...),
		}
		for _, i := range coll.Indexes {
			kind := domain.IndexIndexed
			if i.Kind != "" {
				kind, _ = domain.ParseIndexKind(i.Kind)
			}
			l.Indexes = append(l.Indexes, domain.IndexDefinition{
				Path: i.Path,
				Name: i.Name,
				Kind: kind,
			})
		}
		res[name] = l
	}
	return res
}
