package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxUploadBytes is the ceiling on a single photo before compression.
const MaxUploadBytes = 50 << 20

// BlobWriter uploads photos and cleans up after failed batches.
type BlobWriter interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, locator string) error
}

// PhotoFile is one file from the editor's multipart form.
type PhotoFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CompressFunc shrinks one photo for upload. A failed compression is
// non-fatal; the original bytes go up instead.
type CompressFunc func(data []byte, contentType string) (out []byte, outType, ext string, err error)

// UploadPhotosInput carries one batch of files for one activity draft.
type UploadPhotosInput struct {
	ActivityID int64 // 0 when the activity has no id yet
	Files      []PhotoFile
}

// UploadPhotosDeps holds dependencies for UploadPhotos.
type UploadPhotosDeps struct {
	Blobs      BlobWriter
	Compress   CompressFunc
	Now        func() time.Time
	OnProgress func(done, total int)
}

// ExecuteUploadPhotos validates, compresses and uploads a batch of photos,
// returning their public locators in the original file order.
// PRE: Every file is an image no larger than MaxUploadBytes
// POST: All files are uploaded, or none remain uploaded and an error names
// the first failure
func ExecuteUploadPhotos(ctx context.Context, input UploadPhotosInput, deps UploadPhotosDeps) ([]string, error) {
	if len(input.Files) == 0 {
		return nil, nil
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	// The whole batch is rejected before any upload starts.
	for _, f := range input.Files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, fmt.Errorf("%s: file must be an image", f.Name)
		}
		if len(f.Data) > MaxUploadBytes {
			return nil, fmt.Errorf("%s: image size must be less than 50MB", f.Name)
		}
	}

	// Photos uploaded for an unsaved activity get a temp key segment that is
	// rewritten to the real id on submit.
	prefix := fmt.Sprintf("%d", input.ActivityID)
	if input.ActivityID == 0 {
		prefix = fmt.Sprintf("temp-%d", now().UnixMilli())
	}

	type result struct {
		locator string
		err     error
	}
	results := make([]result, len(input.Files))
	done := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, f := range input.Files {
		wg.Add(1)
		go func(i int, f PhotoFile) {
			defer wg.Done()
			data, contentType, ext := f.Data, f.ContentType, extensionFor(f.ContentType)
			if deps.Compress != nil {
				out, outType, outExt, err := deps.Compress(f.Data, f.ContentType)
				if err != nil {
					slog.Warn("upload_event", "event", "compress_failed", "file", f.Name, "error", err)
				} else {
					data, contentType, ext = out, outType, outExt
				}
			}

			key := fmt.Sprintf("%s/%d-%s.%s", prefix, now().UnixMilli(), uuid.NewString(), ext)
			locator, err := deps.Blobs.Upload(ctx, key, data, contentType)
			mu.Lock()
			results[i] = result{locator: locator, err: err}
			done++
			if deps.OnProgress != nil {
				deps.OnProgress(done, len(input.Files))
			}
			mu.Unlock()
		}(i, f)
	}
	wg.Wait()

	var locators []string
	var firstErr error
	for i, r := range results {
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", input.Files[i].Name, r.err)
		}
		if r.err == nil {
			locators = append(locators, r.locator)
		}
	}
	if firstErr != nil {
		// One failure fails the batch; blobs that made it up are removed so
		// nothing dangles without a draft referencing it.
		for _, locator := range locators {
			if err := deps.Blobs.Delete(ctx, locator); err != nil {
				slog.Warn("upload_event", "event", "cleanup_failed", "locator", locator, "error", err)
			}
		}
		return nil, firstErr
	}

	slog.Info("upload_event", "event", "batch_uploaded", "count", len(locators), "prefix", prefix)
	return locators, nil
}

// extensionFor picks the stored extension when a photo skips compression.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return "webp"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
