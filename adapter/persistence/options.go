package persistence

import (
	"os"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// WithFileMode sets the file permissions for database files.
func WithFileMode(f os.FileMode) Option {
	return func(po *Persistence) {
		po.fileMode = f
	}
}

// WithDirMode sets the directory permissions for database
// directories.
func WithDirMode(d os.FileMode) Option {
	return func(po *Persistence) {
		po.dirMode = d
	}
}

// WithCompression sets the compression of encoded blobs. Decoding accepts
// every compression regardless of this setting.
func WithCompression(c Compression) Option {
	return func(po *Persistence) {
		po.compression = c
	}
}

// WithSerializer sets the serializer for converting documents to
// bytes.
func WithSerializer(s domain.Serializer) Option {
	return func(po *Persistence) {
		po.serializer = s
	}
}

// WithDeserializer sets the deserializer for converting bytes to
// documents.
func WithDeserializer(d domain.Deserializer) Option {
	return func(po *Persistence) {
		po.deserializer = d
	}
}

// WithStorage sets the storage implementation for file operations.
func WithStorage(s domain.Storage) Option {
	return func(po *Persistence) {
		po.storage = s
	}
}

// Option configures persistence behavior through the functional
// options pattern.
type Option func(*Persistence)
