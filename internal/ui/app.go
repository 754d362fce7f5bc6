package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/interact"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/lifecycle"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/notify"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/publish"
)

// toastTTL is how long a toast stays on screen.
const toastTTL = 3 * time.Second

// maxToasts caps the visible toast stack.
const maxToasts = 3

// Feed is the aggregator surface the feed screen drives.
type Feed interface {
	Refresh(ctx context.Context, publishing bool) error
	Items() []model.FeedItem
	Err() string
	Dismiss(id string) error
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id, viewerID string) error
}

// Sheet is the coordinator surface the comment sheet drives.
// *interact.Coordinator implements it.
type Sheet interface {
	Target() model.Target
	State() interact.State
	SetInput(text string)
	StartReply(commentID string) error
	CancelReply()
	Submit(ctx context.Context) error
	ToggleCommentLike(commentID string) error
	ToggleReplyLike(commentID, replyID string) error
	DislikeComment(commentID string) error
	DislikeReply(commentID, replyID string) error
	RequestDeleteComment(commentID string)
	RequestDeleteReply(commentID, replyID string)
	Close()
}

// CommentLoader fills the comment cache for a post.
type CommentLoader interface {
	Load(ctx context.Context, target model.Target) ([]model.Comment, error)
}

// Publisher is the publishing state machine. *publish.Machine implements it.
type Publisher interface {
	Report(kind string) bool
	Publishing() bool
	Status() publish.Status
}

// Options wires the App to the engine. Feed is required.
type Options struct {
	Feed      Feed
	Loader    CommentLoader
	OpenSheet func(target model.Target) (Sheet, error)
	ViewerID  func() string
	Publisher Publisher
	// PublishedKind, when set, is reported to the Publisher after the first
	// load and followed by a refresh that flags the new item.
	PublishedKind string
	Locale        i18n.Locale
	Now           func() time.Time
	Context       context.Context
}

type toastEntry struct {
	seq   int
	toast notify.Toast
}

type confirm struct {
	prompt notify.Prompt
	cmd    tea.Cmd
}

// App is the root Bubble Tea model.
// App does not hold engine state; it renders snapshots delivered by messages.
type App struct {
	opts Options

	items     []model.FeedItem
	cursor    int
	feedErr   string
	loading   bool
	firstDone bool

	sheet        Sheet
	sheetState   interact.State
	sheetCursor  int
	sheetLoading bool
	input        textinput.Model

	modal    *confirm
	toasts   []toastEntry
	toastSeq int

	publishStatus publish.Status
	spinner       spinner.Model

	width  int
	height int
	ready  bool
}

// NewApp creates an App over opts.
func NewApp(opts Options) App {
	if opts.Locale == "" {
		opts.Locale = i18n.DefaultLocale
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.ViewerID == nil {
		opts.ViewerID = func() string { return "" }
	}

	in := textinput.New()
	in.Placeholder = i18n.T(opts.Locale, i18n.CommentHint)
	in.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return App{
		opts:    opts,
		input:   in,
		spinner: sp,
		loading: opts.Feed != nil,
	}
}

// Init starts the first refresh.
func (a App) Init() tea.Cmd {
	if a.opts.Feed == nil {
		return a.spinner.Tick
	}
	return tea.Batch(a.spinner.Tick, a.refreshCmd(false))
}

func (a App) refreshCmd(publishing bool) tea.Cmd {
	feed, ctx := a.opts.Feed, a.opts.Context
	return func() tea.Msg {
		return RefreshDone{Err: feed.Refresh(ctx, publishing)}
	}
}

func (a App) publishing() bool {
	return a.opts.Publisher != nil && a.opts.Publisher.Publishing()
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(msg.Width-6, 10)
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case FeedUpdated:
		a.items = msg.Items
		a.clampCursor()
		return a, nil

	case RefreshDone:
		a.loading = false
		if errors.Is(msg.Err, lifecycle.ErrStale) {
			return a, nil
		}
		a.items = a.opts.Feed.Items()
		a.feedErr = a.opts.Feed.Err()
		a.clampCursor()
		if msg.Err != nil {
			logging.Warn("ui: refresh failed", "err", msg.Err)
		}

		first := !a.firstDone
		a.firstDone = true
		if first && msg.Err == nil && a.opts.PublishedKind != "" && a.opts.Publisher != nil {
			kind := a.opts.PublishedKind
			a.opts.PublishedKind = ""
			if a.opts.Publisher.Report(kind) {
				a.loading = true
				return a, a.refreshCmd(true)
			}
		}
		return a, nil

	case PublishChanged:
		a.publishStatus = msg.Status
		return a, nil

	case CommentsUpdated:
		if a.sheetFor(msg.PostID) {
			a.syncSheet(false)
		}
		return a, nil

	case SheetChanged:
		if a.sheetFor(msg.PostID) {
			a.syncSheet(false)
		}
		return a, nil

	case CommentsLoaded:
		if !a.sheetFor(msg.PostID) {
			return a, nil
		}
		a.sheetLoading = false
		a.syncSheet(false)
		if msg.Err != nil {
			logging.Warn("ui: comments load failed", "post", msg.PostID, "err", msg.Err)
			return a.addToast(notify.Toast{Message: i18n.T(a.opts.Locale, i18n.LoadFailed), Severity: notify.Error})
		}
		return a, nil

	case SubmitDone:
		if a.sheetFor(msg.PostID) {
			a.syncSheet(true)
		}
		if msg.Err != nil && !errors.Is(msg.Err, lifecycle.ErrStale) {
			logging.Debug("ui: submit not applied", "post", msg.PostID, "err", msg.Err)
		}
		return a, nil

	case ActionDone:
		return a.handleActionDone(msg)

	case ToastMsg:
		return a.addToast(msg.Toast)

	case toastExpired:
		for i, t := range a.toasts {
			if t.seq == msg.seq {
				a.toasts = append(a.toasts[:i:i], a.toasts[i+1:]...)
				break
			}
		}
		return a, nil

	case ConfirmMsg:
		a.modal = &confirm{prompt: msg.Prompt}
		return a, nil
	}

	return a, nil
}

func (a App) handleActionDone(msg ActionDone) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, lifecycle.ErrStale) {
		return a, nil
	}
	loc := a.opts.Locale
	if msg.Err != nil {
		logging.Warn("ui: action failed", "action", msg.Action, "id", msg.ID, "err", msg.Err)
		key := i18n.DeleteFailed
		switch msg.Action {
		case "like":
			key = i18n.LikeFailed
		case "delete":
			key = i18n.PostDeleteFailed
		}
		return a.addToast(notify.Toast{Message: i18n.T(loc, key), Severity: notify.Error})
	}
	switch msg.Action {
	case "delete":
		return a.addToast(notify.Toast{Message: i18n.T(loc, i18n.PostDeleted), Severity: notify.Success})
	case "dismiss":
		return a.addToast(notify.Toast{Message: i18n.T(loc, i18n.Dismissed), Severity: notify.Info})
	}
	return a, nil
}

func (a App) addToast(t notify.Toast) (tea.Model, tea.Cmd) {
	a.toastSeq++
	seq := a.toastSeq
	a.toasts = append(a.toasts, toastEntry{seq: seq, toast: t})
	if len(a.toasts) > maxToasts {
		a.toasts = a.toasts[len(a.toasts)-maxToasts:]
	}
	return a, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpired{seq: seq} })
}

// handleKeyMsg routes keyboard input to the modal, the sheet or the feed.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.closeSheet()
		return a, tea.Quit
	}
	if a.modal != nil {
		return a.handleModalKey(msg)
	}
	if a.sheet != nil {
		return a.handleSheetKey(msg)
	}
	return a.handleFeedKey(msg)
}

func (a App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m := a.modal
		a.modal = nil
		if m.prompt.OnConfirm != nil {
			m.prompt.OnConfirm()
		}
		return a, m.cmd
	case "n", "N", "esc", "q":
		a.modal = nil
	}
	return a, nil
}

func (a App) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.feedErr != "" {
		a.feedErr = ""
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "j", "down":
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "g", "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if len(a.items) > 0 {
			a.cursor = len(a.items) - 1
		}
		return a, nil

	case "r":
		if a.opts.Feed != nil && !a.loading {
			a.loading = true
			return a, a.refreshCmd(a.publishing())
		}
		return a, nil

	case "enter", "c":
		return a.openSheet()

	case "l":
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		feed, ctx, viewer := a.opts.Feed, a.opts.Context, a.opts.ViewerID()
		return a, func() tea.Msg {
			return ActionDone{Action: "like", ID: item.ID, Err: feed.ToggleLike(ctx, item.ID, viewer)}
		}

	case "x":
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		feed := a.opts.Feed
		return a, func() tea.Msg {
			return ActionDone{Action: "dismiss", ID: item.ID, Err: feed.Dismiss(item.ID)}
		}

	case "d":
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		feed, ctx := a.opts.Feed, a.opts.Context
		a.modal = &confirm{
			prompt: notify.Prompt{
				Title:   i18n.T(a.opts.Locale, i18n.DeleteTitle),
				Message: i18n.T(a.opts.Locale, i18n.DeletePost),
			},
			cmd: func() tea.Msg {
				return ActionDone{Action: "delete", ID: item.ID, Err: feed.DeletePost(ctx, item.ID)}
			},
		}
		return a, nil
	}

	return a, nil
}

func (a App) selected() (model.FeedItem, bool) {
	if a.opts.Feed == nil || a.cursor < 0 || a.cursor >= len(a.items) {
		return model.FeedItem{}, false
	}
	return a.items[a.cursor], true
}

func (a App) openSheet() (tea.Model, tea.Cmd) {
	item, ok := a.selected()
	if !ok || a.opts.OpenSheet == nil {
		return a, nil
	}
	sheet, err := a.opts.OpenSheet(item.Target())
	if err != nil {
		logging.Warn("ui: open comments failed", "post", item.ID, "err", err)
		return a.addToast(notify.Toast{Message: i18n.T(a.opts.Locale, i18n.LoadFailed), Severity: notify.Error})
	}

	a.sheet = sheet
	a.sheetCursor = 0
	a.input.Reset()
	a.input.Focus()
	a.syncSheet(true)

	cmds := []tea.Cmd{textinput.Blink}
	if a.opts.Loader != nil && !a.sheetState.Loaded {
		a.sheetLoading = true
		loader, ctx, target := a.opts.Loader, a.opts.Context, sheet.Target()
		cmds = append(cmds, func() tea.Msg {
			_, err := loader.Load(ctx, target)
			return CommentsLoaded{PostID: target.ID, Err: err}
		})
	}
	return a, tea.Batch(cmds...)
}

func (a *App) closeSheet() {
	if a.sheet == nil {
		return
	}
	a.sheet.Close()
	a.sheet = nil
	a.sheetState = interact.State{}
	a.sheetLoading = false
	a.input.Blur()
	a.input.Reset()
}

func (a App) sheetFor(postID string) bool {
	return a.sheet != nil && a.sheet.Target().ID == postID
}

// syncSheet re-reads the coordinator. The input box is only overwritten at
// points where the coordinator owns the text: open, reply start or cancel,
// and submit settlement.
func (a *App) syncSheet(withInput bool) {
	if a.sheet == nil {
		return
	}
	a.sheetState = a.sheet.State()
	if n := len(flatten(a.sheetState.Comments)); a.sheetCursor >= n {
		a.sheetCursor = max(n-1, 0)
	}
	if withInput {
		a.input.SetValue(a.sheetState.Input)
		a.input.CursorEnd()
	}
}

func (a App) handleSheetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := flatten(a.sheetState.Comments)
	var commentID, replyID string
	if a.sheetCursor < len(rows) {
		commentID, replyID = rows[a.sheetCursor].ids(a.sheetState.Comments)
	}

	switch msg.String() {
	case "esc":
		if a.sheetState.ReplyTo != nil {
			a.sheet.CancelReply()
			a.syncSheet(true)
			return a, nil
		}
		a.closeSheet()
		return a, nil

	case "up":
		if a.sheetCursor > 0 {
			a.sheetCursor--
		}
		return a, nil

	case "down":
		if a.sheetCursor < len(rows)-1 {
			a.sheetCursor++
		}
		return a, nil

	case "enter":
		text := a.input.Value()
		a.sheet.SetInput(text)
		if strings.TrimSpace(text) != "" && !a.sheetState.Submitting {
			a.input.SetValue("")
		}
		sheet, ctx := a.sheet, a.opts.Context
		postID := sheet.Target().ID
		return a, func() tea.Msg {
			return SubmitDone{PostID: postID, Err: sheet.Submit(ctx)}
		}

	case "ctrl+l":
		if commentID == "" || interact.IsPlaceholder(commentID) || interact.IsPlaceholder(replyID) {
			return a, nil
		}
		var err error
		if replyID == "" {
			err = a.sheet.ToggleCommentLike(commentID)
		} else {
			err = a.sheet.ToggleReplyLike(commentID, replyID)
		}
		if err != nil {
			logging.Debug("ui: like ignored", "comment", commentID, "reply", replyID, "err", err)
		}
		a.syncSheet(false)
		return a, nil

	case "ctrl+d":
		if commentID == "" || interact.IsPlaceholder(commentID) || interact.IsPlaceholder(replyID) {
			return a, nil
		}
		var err error
		if replyID == "" {
			err = a.sheet.DislikeComment(commentID)
		} else {
			err = a.sheet.DislikeReply(commentID, replyID)
		}
		if err != nil {
			logging.Debug("ui: dislike ignored", "comment", commentID, "reply", replyID, "err", err)
		}
		a.syncSheet(false)
		return a, nil

	case "ctrl+r":
		if commentID == "" || interact.IsPlaceholder(commentID) {
			return a, nil
		}
		if err := a.sheet.StartReply(commentID); err != nil {
			logging.Debug("ui: reply target missing", "comment", commentID, "err", err)
			return a, nil
		}
		a.syncSheet(true)
		return a, nil

	case "ctrl+x":
		if commentID == "" || interact.IsPlaceholder(commentID) || interact.IsPlaceholder(replyID) {
			return a, nil
		}
		if replyID == "" {
			a.sheet.RequestDeleteComment(commentID)
		} else {
			a.sheet.RequestDeleteReply(commentID, replyID)
		}
		return a, nil
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before {
		a.sheet.SetInput(after)
	}
	return a, cmd
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.items) {
		a.cursor = max(len(a.items)-1, 0)
	}
}

// View renders the UI.
func (a App) View() string {
	loc := a.opts.Locale
	if !a.ready {
		return i18n.T(loc, i18n.Loading)
	}
	if a.modal != nil {
		return a.renderModal()
	}

	var top, bottom []string
	switch a.publishStatus {
	case publish.Publishing:
		top = append(top, PublishBar.Width(a.width).Render(a.spinner.View()+" "+i18n.T(loc, i18n.Publishing)))
	case publish.Success:
		top = append(top, PublishBar.Width(a.width).Render("✓ "+i18n.T(loc, i18n.Published)))
	}

	for _, t := range a.toasts {
		bottom = append(bottom, renderToast(t.toast, a.width))
	}

	var body string
	if a.sheet != nil {
		body, top, bottom = a.renderSheet(top, bottom)
	} else {
		if a.feedErr != "" {
			bottom = append(bottom, ErrorStyle.Width(a.width).Render(a.feedErr))
		}
		status := ""
		if a.loading {
			status = " " + a.spinner.View() + " " + i18n.T(loc, i18n.Loading) + " "
		}
		bottom = append(bottom, RenderStatusBar(a.cursor, len(a.items), a.width, status, feedHints))
		body = RenderFeed(a.items, a.cursor, a.width, a.contentHeight(top, bottom), a.opts.ViewerID(), loc, a.opts.Now())
	}

	parts := append(append(top, strings.TrimRight(body, "\n")), bottom...)
	return strings.Join(parts, "\n")
}

func (a App) contentHeight(top, bottom []string) int {
	h := a.height
	for _, s := range append(append([]string(nil), top...), bottom...) {
		h -= lipgloss.Height(s)
	}
	return max(h, 1)
}

func (a App) renderSheet(top, bottom []string) (string, []string, []string) {
	loc := a.opts.Locale
	st := a.sheetState

	title := i18n.T(loc, i18n.BadgePost)
	for _, it := range a.items {
		if it.ID == a.sheet.Target().ID {
			title = it.Author.Name + ": " + oneLine(Summary(it))
			break
		}
	}
	top = append(top, SheetHeader.Render("💬 "+runewidth.Truncate(title, max(a.width-6, 10), "…")))

	if st.ReplyTo != nil {
		bottom = append(bottom, ComposerHint.Render(i18n.T(loc, i18n.ReplyingTo)+" "+st.ReplyTo.AuthorName+"  (Esc)"))
	}
	bottom = append(bottom, Composer.Width(a.width).Render(a.input.View()))

	status := ""
	switch {
	case a.sheetLoading:
		status = " " + a.spinner.View() + " " + i18n.T(loc, i18n.Loading) + " "
	case st.Submitting:
		status = " " + a.spinner.View() + " " + i18n.T(loc, i18n.Sending) + " "
	}
	rows := len(flatten(st.Comments))
	bottom = append(bottom, RenderStatusBar(a.sheetCursor, rows, a.width, status, sheetHints))

	body := RenderComments(st.Comments, a.sheetCursor, a.width, a.contentHeight(top, bottom), loc, a.opts.Now())
	if a.sheetLoading && rows == 0 {
		body = HelpStyle.Render(i18n.T(loc, i18n.Loading))
	}
	return body, top, bottom
}

func (a App) renderModal() string {
	p := a.modal.prompt
	box := Modal.Render(ModalTitle.Render(p.Title) + "\n\n" + p.Message + "\n\n" + StatusBarKey.Render("y") + " / " + StatusBarKey.Render("n"))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func renderToast(t notify.Toast, width int) string {
	style := ToastInfo
	switch t.Severity {
	case notify.Success:
		style = ToastSuccess
	case notify.Error:
		style = ToastError
	}
	return style.Width(width).Render(runewidth.Truncate(t.Message, max(width-2, 10), "…"))
}

// Cursor returns the current feed cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Items returns the current items (for testing).
func (a App) Items() []model.FeedItem {
	return a.items
}

// SheetOpen reports whether the comment sheet is showing.
func (a App) SheetOpen() bool {
	return a.sheet != nil
}

// Input returns the composer text.
func (a App) Input() string {
	return a.input.Value()
}

// Toasts returns the visible toasts, oldest first.
func (a App) Toasts() []notify.Toast {
	out := make([]notify.Toast, len(a.toasts))
	for i, t := range a.toasts {
		out[i] = t.toast
	}
	return out
}

// Prompt returns the open confirmation prompt, if any.
func (a App) Prompt() (notify.Prompt, bool) {
	if a.modal == nil {
		return notify.Prompt{}, false
	}
	return a.modal.prompt, true
}
