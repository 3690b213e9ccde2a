package assets

import (
	"context"
	"errors"
)

var errNotConfigured = errors.New("asset storage is not configured, set the CLOUDINARY_* credentials")

// DisabledStore stands in when no storage credentials are configured. The
// server still boots; features that need uploads fail with a clear error.
type DisabledStore struct{}

func (DisabledStore) Upload(context.Context, []byte, string, string) (string, error) {
	return "", errNotConfigured
}

func (DisabledStore) Destroy(context.Context, string, string) error {
	return errNotConfigured
}
