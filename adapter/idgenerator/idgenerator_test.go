package idgenerator

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

type IDGeneratorTestSuite struct {
	suite.Suite
	ig *IDGenerator
}

func (s *IDGeneratorTestSuite) SetupTest() {
	s.ig = NewIDGenerator().(*IDGenerator)
}

func (s *IDGeneratorTestSuite) TestObjectID() {
	id1, err := s.ig.GenerateID()
	s.NoError(err)
	s.Equal(doc.KindObjectID, id1.Kind())

	id2, err := s.ig.GenerateID()
	s.NoError(err)
	s.NotEqual(id1, id2)
}

func (s *IDGeneratorTestSuite) TestUUID() {
	s.ig = NewIDGenerator(WithKind(KindUUID)).(*IDGenerator)

	id, err := s.ig.GenerateID()
	s.NoError(err)
	str, ok := id.AsString()
	s.Require().True(ok)
	parsed, err := uuid.Parse(str)
	s.NoError(err)
	s.Equal(uuid.Version(4), parsed.Version())
}

// If the value in the random reader does not repeat, IDs multiple times will
// not result in collision.
func (s *IDGeneratorTestSuite) TestCollision() {
	t := `abcdefghijklmnopqrstuvwxy0123456789ABCDEF`
	s.ig = NewIDGenerator(WithKind(KindUUID), WithReader(strings.NewReader(t))).(*IDGenerator)

	id1, err := s.ig.GenerateID()
	s.NoError(err)

	id2, err := s.ig.GenerateID()
	s.NoError(err)

	s.NotEqual(id1, id2)
}

func (s *IDGeneratorTestSuite) TestReadError() {
	s.ig = NewIDGenerator(WithKind(KindUUID), WithReader(strings.NewReader(""))).(*IDGenerator)

	id, err := s.ig.GenerateID()
	s.ErrorIs(err, io.EOF)
	s.True(id.IsNull())
}

func (s *IDGeneratorTestSuite) TestParseKind() {
	k, ok := ParseKind("uuid")
	s.True(ok)
	s.Equal(KindUUID, k)

	k, ok = ParseKind("")
	s.True(ok)
	s.Equal(KindObjectID, k)

	_, ok = ParseKind("serial")
	s.False(ok)
}

func TestIDGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(IDGeneratorTestSuite))
}
