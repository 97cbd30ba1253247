package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// MediaService uploads images to Cloudinary and deletes them again when the
// owning record goes away.
type MediaService struct {
	cld *cloudinary.Cloudinary
}

func NewMediaService(cloudName, apiKey, apiSecret string) (*MediaService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be configured")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &MediaService{cld: cld}, nil
}

// UploadImage accepts a base64 data URI (or remote URL) and returns the
// hosted secure URL.
func (m *MediaService) UploadImage(ctx context.Context, data, folder string) (string, error) {
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	result, err := m.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:   folder,
		PublicID: publicID,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return result.SecureURL, nil
}

// DeleteByURL derives the public ID from a delivery URL and destroys the
// asset. Best effort: callers treat failure as non-fatal.
func (m *MediaService) DeleteByURL(ctx context.Context, mediaURL string) error {
	publicID := PublicIDFromURL(mediaURL)
	if publicID == "" {
		return fmt.Errorf("could not derive public ID from %q", mediaURL)
	}
	_, err := m.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// PublicIDFromURL extracts the Cloudinary public ID (with folder path) from a
// delivery URL: everything after the "upload/<version>/" segment, minus the
// file extension.
func PublicIDFromURL(mediaURL string) string {
	parts := strings.Split(mediaURL, "/upload/")
	if len(parts) != 2 {
		return ""
	}
	path := parts[1]
	// Skip the version segment (v1234567890/) when present.
	if strings.HasPrefix(path, "v") {
		if idx := strings.Index(path, "/"); idx > 0 {
			if isDigits(path[1:idx]) {
				path = path[idx+1:]
			}
		}
	}
	if dot := strings.LastIndex(path, "."); dot > 0 {
		path = path[:dot]
	}
	return path
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
