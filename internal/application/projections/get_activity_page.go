// Package projections builds read models for the public site and the admin
// dashboard.
package projections

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/yuin/goldmark"

	"cherish/internal/domain/activity"
)

// ActivityCard is one activity as the public grid renders it.
type ActivityCard struct {
	ID            int64
	Title         string
	Description   template.HTML
	Date          string
	Category      string
	CategoryName  string
	CategoryEmoji string
	Color         string
	Cover         string // cover image URL, empty when only the glyph shows
	Glyph         string
	Images        []string
	PhotoCount    int
}

// GetActivityPageResult carries the activity grid plus category metadata for
// the editor's picker.
type GetActivityPageResult struct {
	Cards      []ActivityCard
	Categories []activity.CategoryInfo
}

// ActivityLister supplies the reconciled activity list.
type ActivityLister interface {
	All() []activity.Activity
}

// markdown renders activity descriptions. Goldmark escapes raw HTML by
// default, which is what admin-entered text needs.
var markdown = goldmark.New()

// QueryGetActivityPage builds the public activity grid in stored order.
// POST: One card per activity; cover priority is photo, then bundled static
// image, then the category glyph
func QueryGetActivityPage(deps ActivityLister) GetActivityPageResult {
	list := deps.All()
	cards := make([]ActivityCard, 0, len(list))
	for _, a := range list {
		meta := activity.CategoryMeta(a.Category)
		cards = append(cards, ActivityCard{
			ID:            a.ID,
			Title:         a.Title,
			Description:   renderDescription(a.Description),
			Date:          a.Date,
			Category:      a.Category,
			CategoryName:  meta.Name,
			CategoryEmoji: meta.Emoji,
			Color:         activity.GradientFor(a.Category),
			Cover:         activity.CoverFor(a),
			Glyph:         activity.GlyphFor(a.Images),
			Images:        a.Images,
			PhotoCount:    len(a.Images),
		})
	}
	return GetActivityPageResult{Cards: cards, Categories: activity.CategoryList}
}

func renderDescription(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		slog.Warn("render_event", "event", "markdown_failed", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
