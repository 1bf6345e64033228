// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service contains the application-level operations that span
// storage, file handling and image processing.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/foliolab/folio/internal/imaging"
	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/store"
	"github.com/foliolab/folio/internal/util"
)

// ErrUnsupportedType is returned when an upload's MIME type is not accepted.
var ErrUnsupportedType = fmt.Errorf("unsupported media type")

// ErrUploadTooLarge is returned when an upload exceeds the configured limit.
var ErrUploadTooLarge = fmt.Errorf("upload exceeds size limit")

// MediaService handles the media upload pipeline and file lifecycle.
type MediaService struct {
	store     *store.Store
	processor *imaging.Processor
	baseURL   string
	maxSize   int64
	log       *slog.Logger
}

// NewMediaService creates a media service writing files under uploadDir.
func NewMediaService(s *store.Store, uploadDir, baseURL string, maxSize int64, log *slog.Logger) *MediaService {
	return &MediaService{
		store:     s,
		processor: imaging.NewProcessor(uploadDir),
		baseURL:   baseURL,
		maxSize:   maxSize,
		log:       log,
	}
}

// Upload stores an uploaded file, generates image variants when the type
// supports them, and persists the metadata record. Files written before a
// later step fails are cleaned up.
func (svc *MediaService) Upload(ctx context.Context, reader io.Reader, originalName, contentType string) (model.Media, error) {
	data, err := io.ReadAll(io.LimitReader(reader, svc.maxSize+1))
	if err != nil {
		return model.Media{}, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > svc.maxSize {
		return model.Media{}, ErrUploadTooLarge
	}

	filename := util.SanitizeFilename(originalName)
	ext := strings.ToLower(filepath.Ext(filename))

	mimeType := contentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = model.MimeByExtension[ext]
	}
	if !model.IsSupportedMimeType(mimeType) {
		return model.Media{}, ErrUnsupportedType
	}

	id := uuid.New().String()
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	item := model.Media{
		ID:            id,
		Filename:      filename,
		OriginalName:  originalName,
		Slug:          util.Slugify(base),
		Mime:          mimeType,
		ActiveVariant: model.VariantOriginal,
		Variants:      map[string]string{},
	}

	if svc.processor.IsImage(mimeType) {
		if err := svc.processUpload(&item, data, id, filename); err != nil {
			svc.cleanup(id)
			return model.Media{}, err
		}
	} else {
		path, size, err := svc.processor.SaveRaw(bytes.NewReader(data), id, filename)
		if err != nil {
			svc.cleanup(id)
			return model.Media{}, err
		}
		item.Path = path
		item.Size = size
		item.URL = svc.mediaURL(path)
		item.Variants[model.VariantOriginal] = item.URL
	}

	created, err := svc.store.CreateMedia(ctx, item)
	if err != nil {
		svc.cleanup(id)
		return model.Media{}, fmt.Errorf("persisting media record: %w", err)
	}

	svc.log.Info("media uploaded",
		"id", created.ID,
		"filename", created.Filename,
		"mime", created.Mime,
		"size", created.Size,
		"variants", len(created.Variants))
	return created, nil
}

// processUpload decodes the image, writes the corrected original and the
// standard variant set, and fills in the metadata fields.
func (svc *MediaService) processUpload(item *model.Media, data []byte, id, filename string) error {
	original, err := svc.processor.ProcessOriginal(bytes.NewReader(data), id, filename)
	if err != nil {
		return fmt.Errorf("processing image: %w", err)
	}

	item.Path = original.FilePath
	item.Size = original.Size
	item.Mime = original.MimeType
	item.Width = sql.NullInt64{Int64: int64(original.Width), Valid: true}
	item.Height = sql.NullInt64{Int64: int64(original.Height), Valid: true}
	item.URL = svc.mediaURL(original.FilePath)
	item.Variants[model.VariantOriginal] = item.URL

	sourcePath := filepath.Join(svc.processor.UploadDir(), original.FilePath)
	variants, err := svc.processor.CreateAllVariants(sourcePath, id, filename)
	if err != nil {
		return fmt.Errorf("generating variants: %w", err)
	}
	for _, v := range variants {
		item.Variants[v.Name] = svc.mediaURL(v.FilePath)
	}
	return nil
}

// Delete removes a media record together with its files on disk. The
// record is removed first; a failed file cleanup is logged, not fatal.
func (svc *MediaService) Delete(ctx context.Context, id string) error {
	if err := svc.store.DeleteMedia(ctx, id); err != nil {
		return err
	}
	if err := svc.processor.DeleteMediaFiles(id); err != nil {
		svc.log.Warn("failed to remove media files", "id", id, "error", err)
	}
	return nil
}

func (svc *MediaService) cleanup(id string) {
	if err := svc.processor.DeleteMediaFiles(id); err != nil {
		svc.log.Warn("failed to clean up after upload error", "id", id, "error", err)
	}
}

func (svc *MediaService) mediaURL(path string) string {
	return svc.baseURL + "/uploads/" + filepath.ToSlash(path)
}
