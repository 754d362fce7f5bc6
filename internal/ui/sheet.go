package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// row addresses one visible line of the comment sheet. reply is -1 for the
// comment itself.
type row struct {
	comment int
	reply   int
}

func flatten(tree []model.Comment) []row {
	var rows []row
	for ci, c := range tree {
		rows = append(rows, row{comment: ci, reply: -1})
		for ri := range c.Replies {
			rows = append(rows, row{comment: ci, reply: ri})
		}
	}
	return rows
}

// ids returns the comment and reply ids of r; reply is "" for a comment row.
func (r row) ids(tree []model.Comment) (commentID, replyID string) {
	if r.comment < 0 || r.comment >= len(tree) {
		return "", ""
	}
	c := tree[r.comment]
	if r.reply < 0 || r.reply >= len(c.Replies) {
		return c.ID, ""
	}
	return c.ID, c.Replies[r.reply].ID
}

type entry struct {
	author    string
	text      string
	createdAt time.Time
	liked     bool
	disliked  bool
	likes     int
	replies   int
	sending   bool
}

func (r row) entry(tree []model.Comment) entry {
	c := tree[r.comment]
	if r.reply < 0 {
		return entry{c.Author.Name, c.Text, c.CreatedAt, c.Liked, c.Disliked, c.LikeCount, c.ReplyCount, c.IsSending}
	}
	rp := c.Replies[r.reply]
	return entry{rp.Author.Name, rp.Text, rp.CreatedAt, rp.Liked, rp.Disliked, rp.LikeCount, -1, rp.IsSending}
}

// RenderComments renders the comment tree with the cursor row highlighted.
func RenderComments(tree []model.Comment, cursor, width, height int, loc i18n.Locale, now time.Time) string {
	rows := flatten(tree)
	if len(rows) == 0 {
		return HelpStyle.Render(i18n.T(loc, i18n.NoComments))
	}
	if height < 1 {
		height = 1
	}

	offset := scrollOffset(cursor, len(rows), height)
	var b strings.Builder
	for i := offset; i < len(rows) && i < offset+height; i++ {
		b.WriteString(renderCommentLine(rows[i], tree, i == cursor, width, loc, now))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCommentLine(r row, tree []model.Comment, selected bool, width int, loc i18n.Locale, now time.Time) string {
	e := r.entry(tree)

	mark := "♡"
	if e.liked {
		mark = "♥"
	}
	meta := fmt.Sprintf(" %s %d", mark, e.likes)
	if e.disliked {
		meta += " ✗"
	}
	if e.replies > 0 {
		meta += fmt.Sprintf("  ↳ %d", e.replies)
	}
	if e.sending {
		meta += "  " + i18n.T(loc, i18n.Sending)
	} else {
		meta += "  " + i18n.RelTime(e.createdAt, now, loc)
	}

	indent := 0
	if r.reply >= 0 {
		indent = 4
	}
	body := e.author + ": " + oneLine(e.text)
	avail := width - indent - runewidth.StringWidth(meta) - 2
	if avail < 10 {
		avail = 10
	}
	body = runewidth.FillRight(runewidth.Truncate(body, avail, "…"), avail)

	style := NormalItem
	switch {
	case selected:
		style = SelectedItem
	case e.sending:
		style = SendingItem
	}
	line := style.Render(body) + MetaItem.Render(meta)
	if indent > 0 {
		return ReplyIndent.Render(line)
	}
	return line
}

var sheetHints = []string{
	hint("↑/↓", "nav"),
	hint("Enter", "send"),
	hint("^L", "like"),
	hint("^D", "dislike"),
	hint("^R", "reply"),
	hint("^X", "delete"),
	hint("Esc", "back"),
}
