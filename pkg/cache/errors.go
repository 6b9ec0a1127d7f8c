package cache

import (
	"github.com/matzehuels/jengatower/pkg/errors"
)

// backendError tags a storage failure with the cache error code so callers
// can degrade to a miss instead of aborting.
func backendError(err error, op, key string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeCache, err, "cache %s %s", op, key)
}

// IsBackendError reports whether err came from a cache backend.
func IsBackendError(err error) bool {
	return errors.Is(err, errors.ErrCodeCache)
}
