package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// RenderFeed renders the feed list, scrolled so the cursor row is visible.
func RenderFeed(items []model.FeedItem, cursor, width, height int, viewerID string, loc i18n.Locale, now time.Time) string {
	if len(items) == 0 {
		return HelpStyle.Render(i18n.T(loc, i18n.NoItems))
	}
	if height < 1 {
		height = 1
	}

	offset := scrollOffset(cursor, len(items), height)
	var b strings.Builder
	for i := offset; i < len(items) && i < offset+height; i++ {
		b.WriteString(renderItemLine(items[i], i == cursor, width, viewerID, loc, now))
		b.WriteString("\n")
	}
	return b.String()
}

// scrollOffset is the first visible row index that keeps cursor on screen.
func scrollOffset(cursor, total, height int) int {
	if total == 0 || cursor < 0 {
		return 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	if cursor >= height {
		return cursor - height + 1
	}
	return 0
}

func badge(typ model.ItemType, loc i18n.Locale) string {
	switch typ {
	case model.TypeShipmentAd:
		return TypeBadge.Foreground(colorShipment).Render(i18n.T(loc, i18n.BadgeShipment))
	case model.TypeEmptyTruckAd:
		return TypeBadge.Foreground(colorTruck).Render(i18n.T(loc, i18n.BadgeTruck))
	}
	return TypeBadge.Render(i18n.T(loc, i18n.BadgePost))
}

// Summary is the one-line body of a feed item.
func Summary(item model.FeedItem) string {
	switch {
	case item.Route != nil:
		s := item.Route.From + " → " + item.Route.To
		if item.Text != "" {
			s += " · " + item.Text
		}
		return s
	case item.Truck != nil:
		s := item.Truck.Location + " → " + item.Truck.Destination
		if item.Truck.Type != "" {
			s += " (" + item.Truck.Type + ")"
		}
		return s
	}
	return item.Text
}

func renderItemLine(item model.FeedItem, selected bool, width int, viewerID string, loc i18n.Locale, now time.Time) string {
	b := badge(item.Type, loc)

	likeMark := "♡"
	if viewerID != "" && item.ReactedBy(viewerID) {
		likeMark = "♥"
	}
	meta := fmt.Sprintf(" %s %d  💬 %d  %s", likeMark, len(item.Reactions), item.CommentCount, i18n.RelTime(item.CreatedAt, now, loc))

	prefix := ""
	if item.IsNew {
		prefix = NewItem.Render("● ")
	}

	author := item.Author.Name
	if author == "" {
		author = "—"
	}
	body := author + ": " + oneLine(Summary(item))

	avail := width - lipgloss.Width(b) - lipgloss.Width(prefix) - runewidth.StringWidth(meta) - 2
	if avail < 10 {
		avail = 10
	}
	body = runewidth.Truncate(body, avail, "…")
	body = runewidth.FillRight(body, avail)

	style := NormalItem
	if selected {
		style = SelectedItem
	}
	return prefix + b + style.Render(body) + MetaItem.Render(meta)
}

// oneLine collapses whitespace runs, newlines included, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RenderStatusBar renders the bottom status bar with key hints and position.
func RenderStatusBar(cursor, total, width int, status string, hints []string) string {
	left := status
	if left == "" {
		left = fmt.Sprintf(" %d/%d ", min(cursor+1, total), total)
	}

	keyHints := strings.Join(hints, " ")
	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

func hint(key, label string) string {
	return StatusBarKey.Render(key) + StatusBarText.Render(":"+label)
}

var feedHints = []string{
	hint("j/k", "nav"),
	hint("Enter", "comments"),
	hint("l", "like"),
	hint("x", "hide"),
	hint("d", "delete"),
	hint("r", "refresh"),
	hint("q", "quit"),
}
