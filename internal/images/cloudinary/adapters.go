package cloudinary

import (
	"context"
	"io"

	"github.com/cosplay-angola/server/internal/domain/media"
)

// EventImages narrows the client to the cover image contract the events
// service expects. Uploads land in the configured folder.
type EventImages struct {
	client *Client
	folder string
}

func NewEventImages(client *Client, folder string) *EventImages {
	return &EventImages{client: client, folder: folder}
}

func (u *EventImages) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	result, err := u.client.Upload(ctx, file, filename, u.folder)
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

// MediaStore adapts the client to the media gallery's image host contract.
type MediaStore struct {
	client *Client
	folder string
}

func NewMediaStore(client *Client, folder string) *MediaStore {
	return &MediaStore{client: client, folder: folder}
}

func (s *MediaStore) Upload(ctx context.Context, file io.Reader, filename string) (media.StoredImage, error) {
	result, err := s.client.Upload(ctx, file, filename, s.folder)
	if err != nil {
		return media.StoredImage{}, err
	}
	return media.StoredImage{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Format:   result.Format,
		Bytes:    result.Bytes,
		Width:    result.Width,
		Height:   result.Height,
	}, nil
}

func (s *MediaStore) Destroy(ctx context.Context, publicID string) error {
	return s.client.Destroy(ctx, publicID)
}
