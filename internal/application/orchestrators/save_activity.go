package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"cherish/internal/domain/activity"
)

// ActivityCatalog is the mutable activity list the editor writes through.
type ActivityCatalog interface {
	Get(id int64) (activity.Activity, bool)
	NextID(floor int64) int64
	Upsert(ctx context.Context, a activity.Activity) error
	Remove(ctx context.Context, id int64) error
}

// SaveActivityInput carries the submitted editor form.
type SaveActivityInput struct {
	EditingID   int64 // 0 when creating
	Title       string
	Description string
	Category    string
	Date        string
	Images      []string // draft image locators, in display order
}

// SaveActivityDeps holds dependencies for SaveActivity.
type SaveActivityDeps struct {
	Catalog ActivityCatalog
	Now     func() time.Time
}

// tempSegment matches the placeholder path segment photos get when they are
// uploaded before the activity has an id.
var tempSegment = regexp.MustCompile(`/temp-\d+/`)

// ExecuteSaveActivity creates or updates one activity from the editor form.
// PRE: Title, Description set; Category is a known category
// POST: Catalog contains the activity; photos keep the existing set when an
// edit arrives with no new uploads
func ExecuteSaveActivity(ctx context.Context, input SaveActivityInput, deps SaveActivityDeps) (activity.Activity, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	// An edit with no new photos keeps whatever the activity already had.
	finalImages := activity.FilterImages(input.Images)
	if input.EditingID != 0 && len(finalImages) == 0 {
		if existing, ok := deps.Catalog.Get(input.EditingID); ok && len(existing.Images) > 0 {
			finalImages = existing.Images
		}
	}

	id := input.EditingID
	if id == 0 {
		id = deps.Catalog.NextID(now().UnixMilli())
	}

	date := input.Date
	if date == "" {
		date = now().Format("2006-01-02")
	}

	// Photos uploaded before the id existed carry a temp segment in their
	// locator; point them at the real id now.
	realSegment := fmt.Sprintf("/%d/", id)
	for i, img := range finalImages {
		finalImages[i] = tempSegment.ReplaceAllString(img, realSegment)
	}

	a := activity.Activity{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Date:        date,
		Image:       activity.GlyphFor(finalImages),
		Color:       activity.GradientFor(input.Category),
		Images:      finalImages,
	}
	if err := a.Validate(); err != nil {
		return activity.Activity{}, err
	}

	if err := deps.Catalog.Upsert(ctx, a); err != nil {
		slog.Warn("activity_event", "event", "save_persist_failed", "id", id, "error", err)
		return a, err
	}

	slog.Info("activity_event", "event", "saved", "id", id, "editing", input.EditingID != 0, "photos", len(finalImages))
	return a, nil
}
