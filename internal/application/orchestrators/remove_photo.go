package orchestrators

import (
	"context"
	"log/slog"
)

// RemovePhotoDeps holds dependencies for RemovePhoto.
type RemovePhotoDeps struct {
	Blobs BlobRemover
}

// ExecuteRemovePhoto drops one locator from a draft's image list, deleting
// the stored blob when the locator is ours. Static assets pass through.
// POST: The returned list no longer contains images[index]; blob deletion is
// best-effort
func ExecuteRemovePhoto(ctx context.Context, images []string, index int, deps RemovePhotoDeps) []string {
	if index < 0 || index >= len(images) {
		return images
	}
	locator := images[index]
	if deps.Blobs.Owns(locator) {
		if err := deps.Blobs.Delete(ctx, locator); err != nil {
			slog.Warn("upload_event", "event", "photo_delete_failed", "locator", locator, "error", err)
		}
	}
	out := make([]string, 0, len(images)-1)
	out = append(out, images[:index]...)
	out = append(out, images[index+1:]...)
	return out
}
