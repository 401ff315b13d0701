// Package media uploads driver documents to external image hosting.
package media

import (
	"context"
	"errors"
	"io"
)

var ErrNotConfigured = errors.New("document hosting is not configured")

// Document is an uploaded file as received from the client.
type Document struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Uploader stores an image and returns its stable public URL.
type Uploader interface {
	UploadImage(ctx context.Context, doc Document) (string, error)
}

// Disabled rejects every upload. It is used when no hosting provider is
// configured, so driver signup fails before anything is written.
type Disabled struct{}

func (Disabled) UploadImage(context.Context, Document) (string, error) {
	return "", ErrNotConfigured
}
