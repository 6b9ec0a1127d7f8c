package cache

import (
	"context"

	"github.com/matzehuels/jengatower/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string // file
	URL        string // redis or mongo
	Database   string // mongo
	Collection string // mongo
	Prefix     string // redis key prefix
}

// Open constructs the backend named by opts.Backend. An empty backend means
// the file cache in its default directory.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileCache(opts.Dir)
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		return NewRedisCache(ctx, opts.URL, opts.Prefix)
	case BackendMongo:
		db, coll := opts.Database, opts.Collection
		if db == "" {
			db = "jengatower"
		}
		if coll == "" {
			coll = "cache"
		}
		return NewMongoCache(ctx, opts.URL, db, coll)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
	}
}
