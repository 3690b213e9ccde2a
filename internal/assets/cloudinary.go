// Package assets stores generated images on hosted storage and hands back
// public URLs.
package assets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads story illustrations and avatars to Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	prefix string
}

// NewCloudinaryStore creates a store from credentials
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{
		cld:    cld,
		prefix: "storybook",
	}, nil
}

// Upload stores the asset under the given folder and returns its public URL.
// Re-uploading the same name overwrites the previous asset.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder, name string) (string, error) {
	overwrite := true

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     name,
		Folder:       fmt.Sprintf("%s/%s", s.prefix, folder),
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	return result.SecureURL, nil
}

// Destroy removes a previously uploaded asset.
func (s *CloudinaryStore) Destroy(ctx context.Context, folder, name string) error {
	publicID := fmt.Sprintf("%s/%s/%s", s.prefix, folder, name)

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}
