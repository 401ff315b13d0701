package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cfg *config.Config) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: cfg.CloudinaryFolder}, nil
}

func (u *CloudinaryUploader) UploadImage(ctx context.Context, doc Document) (string, error) {
	if doc.Content == nil {
		return "", errors.New("empty document")
	}
	resp, err := u.cld.Upload.Upload(ctx, doc.Content, uploader.UploadParams{
		Folder:       u.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", doc.Field, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", doc.Field, resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("upload %s: no url returned", doc.Field)
	}
	return resp.SecureURL, nil
}
