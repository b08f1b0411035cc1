package activity

import (
	"errors"
	"strings"
)

// Categories
const (
	CategoryArt     = "art"
	CategoryMusic   = "music"
	CategoryNature  = "nature"
	CategorySports  = "sports"
	CategoryReading = "reading"
	CategoryScience = "science"
)

// ValidCategories contains all valid activity categories.
var ValidCategories = []string{CategoryArt, CategoryMusic, CategoryNature, CategorySports, CategoryReading, CategoryScience}

// CategoryInfo carries display metadata for a category.
type CategoryInfo struct {
	ID    string
	Name  string
	Emoji string
}

// CategoryList is the ordered category set shown in the editor form.
var CategoryList = []CategoryInfo{
	{ID: CategoryArt, Name: "Art & Craft", Emoji: "🎨"},
	{ID: CategoryMusic, Name: "Music", Emoji: "🎵"},
	{ID: CategoryNature, Name: "Nature", Emoji: "🌿"},
	{ID: CategorySports, Name: "Sports", Emoji: "⚽"},
	{ID: CategoryReading, Name: "Reading", Emoji: "📚"},
	{ID: CategoryScience, Name: "Science", Emoji: "🔬"},
}

// CategoryMeta returns display metadata for a category id. Unknown ids fall
// back to the raw id with no emoji.
func CategoryMeta(category string) CategoryInfo {
	for _, c := range CategoryList {
		if c.ID == category {
			return c
		}
	}
	return CategoryInfo{ID: category, Name: category}
}

// Gradients maps a category to its presentation gradient key.
var Gradients = map[string]string{
	CategoryArt:     "from-cherish-pink to-rose-400",
	CategoryMusic:   "from-cherish-purple to-indigo-400",
	CategoryNature:  "from-cherish-green to-emerald-400",
	CategoryReading: "from-cherish-blue to-cyan-400",
	CategorySports:  "from-cherish-orange to-red-400",
	CategoryScience: "from-cherish-yellow to-amber-400",
}

// Fallback glyphs shown when no photo renders.
const (
	GlyphPhoto   = "📷"
	GlyphDefault = "🎨"
)

// StaticCovers maps the exact titles of the bundled default activities to
// cover images shipped with the site. Only these three titles ever match.
var StaticCovers = map[string]string{
	"Art & Craft Day": "/static/art.png",
	"Story Time":      "/static/story-telling.png",
	"Sports Day":      "/static/sports-time.png",
}

// Domain errors
var (
	ErrEmptyTitle       = errors.New("activity title cannot be empty")
	ErrEmptyDescription = errors.New("activity description cannot be empty")
	ErrInvalidCategory  = errors.New("activity category must be one of: art, music, nature, sports, reading, science")
)

// Activity is one entry of the activity grid shown to visitors.
// ID is the sole identity key: 1–3 for the bundled defaults, a
// millisecond-timestamp value for admin-created entries.
type Activity struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`  // fallback glyph, derived
	Color       string   `json:"color"`  // gradient key, derived from Category
	Date        string   `json:"date"`   // ISO date, display only
	Images      []string `json:"images"` // ordered photo locators, first is the cover
}

// Validate checks the form-level constraints on an Activity.
// PRE: Activity struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(a.Description) == "" {
		return ErrEmptyDescription
	}
	if !isValidCategory(a.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// GradientFor returns the gradient key for a category, defaulting to art's.
func GradientFor(category string) string {
	if g, ok := Gradients[category]; ok {
		return g
	}
	return Gradients[CategoryArt]
}

// GlyphFor returns the fallback glyph for an activity with the given photos.
func GlyphFor(images []string) string {
	if len(images) > 0 {
		return GlyphPhoto
	}
	return GlyphDefault
}

// CoverFor resolves the display cover for an activity: static cover by exact
// title first, then the first uploaded photo, else empty (render the glyph).
func CoverFor(a Activity) string {
	if cover, ok := StaticCovers[a.Title]; ok {
		return cover
	}
	if len(a.Images) > 0 {
		return a.Images[0]
	}
	return ""
}

// FilterImages discards empty and whitespace-only locators, preserving order.
// POST: Every returned entry is a non-empty trimmed string
func FilterImages(images []string) []string {
	var out []string
	for _, img := range images {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Defaults returns a fresh copy of the bundled default activities.
// Callers may mutate the result freely.
func Defaults() []Activity {
	return []Activity{
		{
			ID:          1,
			Title:       "Art & Craft Day",
			Description: "Children created beautiful paintings and handmade crafts",
			Image:       "🎨",
			Category:    CategoryArt,
			Date:        "2025-01-15",
			Color:       Gradients[CategoryArt],
		},
		{
			ID:          2,
			Title:       "Story Time",
			Description: "Interactive storytelling session with puppets",
			Image:       "📚",
			Category:    CategoryReading,
			Date:        "2025-01-22",
			Color:       Gradients[CategoryReading],
		},
		{
			ID:          3,
			Title:       "Sports Day",
			Description: "Mini Olympics with fun games and races",
			Image:       "⚽",
			Category:    CategorySports,
			Date:        "2025-01-25",
			Color:       Gradients[CategorySports],
		},
	}
}

func isValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}
