// Package idgenerator contains the default [domain.IDGenerator]
// implementations: BSON ObjectIDs and random UUID strings.
package idgenerator

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// Kind selects the identifier format.
type Kind uint8

// Identifier formats.
const (
	KindObjectID Kind = iota
	KindUUID
)

// ParseKind reads the configuration names "objectid" and "uuid".
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "", "objectid":
		return KindObjectID, true
	case "uuid":
		return KindUUID, true
	}
	return KindObjectID, false
}

// IDGenerator implements [domain.IDGenerator].
type IDGenerator struct {
	kind   Kind
	reader io.Reader
}

// NewIDGenerator returns a generator of ObjectIDs unless another kind is
// configured.
func NewIDGenerator(opts ...Option) domain.IDGenerator {
	i := IDGenerator{
		kind:   KindObjectID,
		reader: rand.Reader,
	}
	for _, opt := range opts {
		opt(&i)
	}
	return &i
}

// GenerateID implements [domain.IDGenerator].
func (i *IDGenerator) GenerateID() (doc.Value, error) {
	if i.kind == KindUUID {
		id, err := uuid.NewRandomFromReader(i.reader)
		if err != nil {
			return doc.Null(), err
		}
		return doc.String(id.String()), nil
	}
	return doc.OID(primitive.NewObjectID()), nil
}
