package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/interact"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/notify"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/publish"
)

// mockFeed records the calls the App makes.
type mockFeed struct {
	items     []model.FeedItem
	errMsg    string
	refreshes []bool
	liked     []string
	dismissed []string
	deleted   []string
	deleteErr error
}

func (m *mockFeed) Refresh(_ context.Context, publishing bool) error {
	m.refreshes = append(m.refreshes, publishing)
	return nil
}
func (m *mockFeed) Items() []model.FeedItem { return m.items }
func (m *mockFeed) Err() string             { return m.errMsg }
func (m *mockFeed) Dismiss(id string) error {
	m.dismissed = append(m.dismissed, id)
	return nil
}
func (m *mockFeed) DeletePost(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}
func (m *mockFeed) ToggleLike(_ context.Context, id, viewerID string) error {
	m.liked = append(m.liked, id+"|"+viewerID)
	return nil
}

type mockSheet struct {
	target    model.Target
	st        interact.State
	inputs    []string
	submits   int
	submitErr error
	likes     []string
	dislikes  []string
	deletes   []string
	closed    bool
}

func (m *mockSheet) Target() model.Target  { return m.target }
func (m *mockSheet) State() interact.State { return m.st }
func (m *mockSheet) SetInput(text string) {
	m.inputs = append(m.inputs, text)
	m.st.Input = text
}
func (m *mockSheet) StartReply(commentID string) error {
	m.st.ReplyTo = &interact.ReplyTarget{CommentID: commentID, AuthorName: "Sara"}
	m.st.Input = "@Sara "
	return nil
}
func (m *mockSheet) CancelReply() {
	m.st.ReplyTo = nil
	m.st.Input = ""
}
func (m *mockSheet) Submit(context.Context) error {
	m.submits++
	if m.submitErr == nil {
		m.st.Input = ""
	}
	return m.submitErr
}
func (m *mockSheet) ToggleCommentLike(commentID string) error {
	m.likes = append(m.likes, commentID)
	return nil
}
func (m *mockSheet) ToggleReplyLike(commentID, replyID string) error {
	m.likes = append(m.likes, commentID+"/"+replyID)
	return nil
}
func (m *mockSheet) DislikeComment(commentID string) error {
	m.dislikes = append(m.dislikes, commentID)
	return nil
}
func (m *mockSheet) DislikeReply(commentID, replyID string) error {
	m.dislikes = append(m.dislikes, commentID+"/"+replyID)
	return nil
}
func (m *mockSheet) RequestDeleteComment(commentID string) {
	m.deletes = append(m.deletes, commentID)
}
func (m *mockSheet) RequestDeleteReply(commentID, replyID string) {
	m.deletes = append(m.deletes, commentID+"/"+replyID)
}
func (m *mockSheet) Close() { m.closed = true }

type mockLoader struct {
	loads []string
}

func (m *mockLoader) Load(_ context.Context, target model.Target) ([]model.Comment, error) {
	m.loads = append(m.loads, target.ID)
	return nil, nil
}

type mockPublisher struct {
	reported []string
}

func (m *mockPublisher) Report(kind string) bool {
	m.reported = append(m.reported, kind)
	return true
}
func (m *mockPublisher) Publishing() bool       { return len(m.reported) > 0 }
func (m *mockPublisher) Status() publish.Status { return publish.Idle }

// collect runs cmd and expands batches. Only use it on commands that do
// not sleep.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testItems() []model.FeedItem {
	return []model.FeedItem{
		{ID: "p1", Type: model.TypeGeneral, Text: "first"},
		{ID: "s1", Type: model.TypeShipmentAd, Route: &model.Route{From: "Riyadh", To: "Jeddah"}},
		{ID: "e1", Type: model.TypeEmptyTruckAd, Truck: &model.Truck{Location: "Dammam", Destination: "Riyadh"}},
	}
}

func newTestApp(feed *mockFeed, sheet *mockSheet) App {
	opts := Options{
		Feed:     feed,
		Loader:   &mockLoader{},
		ViewerID: func() string { return "u1" },
		Locale:   i18n.English,
	}
	if sheet != nil {
		opts.OpenSheet = func(target model.Target) (Sheet, error) {
			sheet.target = target
			return sheet, nil
		}
	}
	if feed.items == nil {
		feed.items = testItems()
	}
	app := NewApp(opts)
	m, _ := app.Update(FeedUpdated{Items: testItems()})
	m, _ = m.(App).Update(RefreshDone{})
	return m.(App)
}

func TestAppNavigation(t *testing.T) {
	app := newTestApp(&mockFeed{}, nil)

	// Test j (down)
	m, _ := app.Update(key('j'))
	updated := m.(App)
	if updated.Cursor() != 1 {
		t.Errorf("j should move cursor to 1, got %d", updated.Cursor())
	}

	// Test G (end)
	m, _ = updated.Update(key('G'))
	updated = m.(App)
	if updated.Cursor() != 2 {
		t.Errorf("G should move cursor to 2, got %d", updated.Cursor())
	}

	// Test j at bottom (should stay at 2)
	m, _ = updated.Update(key('j'))
	updated = m.(App)
	if updated.Cursor() != 2 {
		t.Errorf("j at bottom should keep cursor at 2, got %d", updated.Cursor())
	}

	// Shrinking list clamps the cursor
	m, _ = updated.Update(FeedUpdated{Items: testItems()[:1]})
	updated = m.(App)
	if updated.Cursor() != 0 {
		t.Errorf("cursor should clamp to 0, got %d", updated.Cursor())
	}
}

func TestAppRefreshCommand(t *testing.T) {
	feed := &mockFeed{}
	app := newTestApp(feed, nil)

	m, cmd := app.Update(key('r'))
	if cmd == nil {
		t.Fatal("r should return a command")
	}
	msg := cmd()
	if _, ok := msg.(RefreshDone); !ok {
		t.Fatalf("refresh command returned %T", msg)
	}
	if len(feed.refreshes) != 1 || feed.refreshes[0] {
		t.Errorf("refreshes = %v, want [false]", feed.refreshes)
	}

	// A second r while loading is ignored
	if _, cmd := m.(App).Update(key('r')); cmd != nil {
		t.Error("r while loading should not refresh again")
	}
}

func TestAppRefreshDoneReadsFeed(t *testing.T) {
	feed := &mockFeed{items: testItems()[:2], errMsg: "Couldn't load posts, try again"}
	app := NewApp(Options{Feed: feed, Locale: i18n.English})

	m, _ := app.Update(RefreshDone{Err: errors.New("boom")})
	updated := m.(App)
	if len(updated.Items()) != 2 {
		t.Errorf("got %d items, want 2", len(updated.Items()))
	}
	if updated.feedErr != feed.errMsg {
		t.Errorf("feedErr = %q", updated.feedErr)
	}

	// Any key clears the error bar
	m, _ = updated.Update(key('j'))
	if m.(App).feedErr != "" {
		t.Error("key press should clear the error bar")
	}
}

func TestAppPublishedKindRefreshesAsPublishing(t *testing.T) {
	feed := &mockFeed{items: testItems()}
	pub := &mockPublisher{}
	app := NewApp(Options{Feed: feed, Publisher: pub, PublishedKind: "shipmentAd"})

	m, cmd := app.Update(RefreshDone{})
	if len(pub.reported) != 1 || pub.reported[0] != "shipmentAd" {
		t.Fatalf("reported = %v", pub.reported)
	}
	if cmd == nil {
		t.Fatal("expected a publishing refresh")
	}
	cmd()
	if len(feed.refreshes) != 1 || !feed.refreshes[0] {
		t.Errorf("refreshes = %v, want [true]", feed.refreshes)
	}

	// Only the first load reports
	if _, cmd := m.(App).Update(RefreshDone{}); cmd != nil || len(pub.reported) != 1 {
		t.Error("later refreshes should not report again")
	}
}

func TestAppLikeUsesViewer(t *testing.T) {
	feed := &mockFeed{}
	app := newTestApp(feed, nil)

	_, cmd := app.Update(key('l'))
	if cmd == nil {
		t.Fatal("l should return a command")
	}
	msg := cmd()
	done, ok := msg.(ActionDone)
	if !ok || done.Action != "like" || done.Err != nil {
		t.Fatalf("got %#v", msg)
	}
	if len(feed.liked) != 1 || feed.liked[0] != "p1|u1" {
		t.Errorf("liked = %v", feed.liked)
	}
}

func TestAppDeletePostConfirm(t *testing.T) {
	feed := &mockFeed{}
	app := newTestApp(feed, nil)

	// d opens the prompt without deleting
	m, cmd := app.Update(key('d'))
	updated := m.(App)
	if cmd != nil || len(feed.deleted) != 0 {
		t.Fatal("d should only open the prompt")
	}
	p, ok := updated.Prompt()
	if !ok || p.Message != i18n.T(i18n.English, i18n.DeletePost) {
		t.Fatalf("prompt = %+v, %v", p, ok)
	}

	// n cancels
	m, cmd = updated.Update(key('n'))
	if _, ok := m.(App).Prompt(); ok || cmd != nil {
		t.Error("n should close the prompt without a command")
	}

	// d then y deletes
	m, _ = m.(App).Update(key('d'))
	m, cmd = m.(App).Update(key('y'))
	if cmd == nil {
		t.Fatal("y should return the delete command")
	}
	msg := cmd()
	if len(feed.deleted) != 1 || feed.deleted[0] != "p1" {
		t.Errorf("deleted = %v", feed.deleted)
	}

	m, toastCmd := m.(App).Update(msg)
	toasts := m.(App).Toasts()
	if len(toasts) != 1 || toasts[0].Message != "Post deleted" || toasts[0].Severity != notify.Success {
		t.Errorf("toasts = %+v", toasts)
	}
	if toastCmd == nil {
		t.Error("toast should schedule its expiry")
	}
}

func TestAppDeletePostFailureToast(t *testing.T) {
	app := newTestApp(&mockFeed{}, nil)
	m, _ := app.Update(ActionDone{Action: "delete", ID: "p1", Err: errors.New("offline")})
	toasts := m.(App).Toasts()
	if len(toasts) != 1 || toasts[0].Severity != notify.Error {
		t.Errorf("toasts = %+v", toasts)
	}
}

func TestAppToastExpiry(t *testing.T) {
	app := newTestApp(&mockFeed{}, nil)

	var m tea.Model = app
	for i := 0; i < maxToasts+2; i++ {
		m, _ = m.(App).Update(ToastMsg{Toast: notify.Toast{Message: "t"}})
	}
	updated := m.(App)
	if len(updated.Toasts()) != maxToasts {
		t.Fatalf("got %d toasts, want %d", len(updated.Toasts()), maxToasts)
	}

	first := updated.toasts[0].seq
	m, _ = updated.Update(toastExpired{seq: first})
	if len(m.(App).Toasts()) != maxToasts-1 {
		t.Errorf("expired toast not removed")
	}
}

func TestAppOpenSheetLoadsAndSubmits(t *testing.T) {
	feed := &mockFeed{}
	sheet := &mockSheet{}
	app := newTestApp(feed, sheet)
	loader := app.opts.Loader.(*mockLoader)

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := m.(App)
	if !updated.SheetOpen() {
		t.Fatal("enter should open the comment sheet")
	}
	if sheet.target.ID != "p1" {
		t.Errorf("sheet target = %+v", sheet.target)
	}
	var loaded bool
	for _, msg := range collect(cmd) {
		if cl, ok := msg.(CommentsLoaded); ok && cl.PostID == "p1" {
			loaded = true
		}
	}
	if !loaded || len(loader.loads) != 1 {
		t.Errorf("comments not loaded: %v", loader.loads)
	}

	// Typing is mirrored into the coordinator
	for _, r := range "hi" {
		m, _ = m.(App).Update(key(r))
	}
	if got := sheet.st.Input; got != "hi" {
		t.Errorf("coordinator input = %q, want hi", got)
	}

	// Enter clears the box and submits
	m, cmd = m.(App).Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(App).Input() != "" {
		t.Errorf("input not cleared: %q", m.(App).Input())
	}
	if cmd == nil {
		t.Fatal("enter should return the submit command")
	}
	msg := cmd()
	if sheet.submits != 1 {
		t.Errorf("submits = %d", sheet.submits)
	}
	m, _ = m.(App).Update(msg)
	if m.(App).Input() != "" {
		t.Errorf("input after success = %q", m.(App).Input())
	}
}

func TestAppSubmitFailureRestoresInput(t *testing.T) {
	sheet := &mockSheet{submitErr: errors.New("offline")}
	app := newTestApp(&mockFeed{}, sheet)

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range "ok" {
		m, _ = m.(App).Update(key(r))
	}
	m, cmd := m.(App).Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.(App).Update(cmd())
	if got := m.(App).Input(); got != "ok" {
		t.Errorf("input = %q, want restored text", got)
	}
}

func TestAppSheetRowActions(t *testing.T) {
	sheet := &mockSheet{st: interact.State{
		Loaded: true,
		Comments: []model.Comment{
			{ID: "c1", Author: model.User{Name: "Sara"}, Replies: []model.Reply{{ID: "r1"}}, ReplyCount: 1},
			{ID: "c2"},
		},
	}}
	app := newTestApp(&mockFeed{}, sheet)
	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// Row 0 is c1
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	// Row 1 is the reply r1
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlX})

	if got := strings.Join(sheet.likes, ","); got != "c1,c1/r1" {
		t.Errorf("likes = %s", got)
	}
	if got := strings.Join(sheet.dislikes, ","); got != "c1/r1" {
		t.Errorf("dislikes = %s", got)
	}
	if got := strings.Join(sheet.deletes, ","); got != "c1/r1" {
		t.Errorf("deletes = %s", got)
	}

	// Row 2 is c2; a placeholder is skipped
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyDown})
	sheet.st.Comments[1].ID = "temp-123"
	m, _ = m.(App).Update(SheetChanged{PostID: "p1"})
	m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if len(sheet.likes) != 2 {
		t.Errorf("placeholder should not be liked: %v", sheet.likes)
	}
}

func TestAppSheetReplyAndEsc(t *testing.T) {
	sheet := &mockSheet{st: interact.State{Loaded: true, Comments: []model.Comment{{ID: "c1", Author: model.User{Name: "Sara"}}}}}
	app := newTestApp(&mockFeed{}, sheet)
	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if got := m.(App).Input(); got != "@Sara " {
		t.Errorf("input = %q, want mention", got)
	}

	// First esc cancels the reply
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.(App).SheetOpen() || m.(App).Input() != "" {
		t.Error("esc should cancel the reply and keep the sheet open")
	}

	// Second esc closes the sheet and tears the coordinator down
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).SheetOpen() || !sheet.closed {
		t.Error("esc should close the sheet")
	}
}

func TestAppConfirmMsgRunsOnConfirm(t *testing.T) {
	app := newTestApp(&mockFeed{}, nil)
	ran := false
	m, _ := app.Update(ConfirmMsg{Prompt: notify.Prompt{Title: "t", Message: "m", OnConfirm: func() { ran = true }}})
	if _, ok := m.(App).Prompt(); !ok {
		t.Fatal("prompt not shown")
	}
	m, _ = m.(App).Update(key('y'))
	if !ran {
		t.Error("OnConfirm not called")
	}
	if _, ok := m.(App).Prompt(); ok {
		t.Error("prompt still open")
	}
}

func TestAppQuit(t *testing.T) {
	sheet := &mockSheet{}
	app := newTestApp(&mockFeed{}, sheet)
	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
	if !sheet.closed {
		t.Error("quitting should close the open sheet")
	}
}

func TestAppView(t *testing.T) {
	app := newTestApp(&mockFeed{}, nil)
	if got := app.View(); got != i18n.T(i18n.English, i18n.Loading) {
		t.Errorf("view before size = %q", got)
	}

	m, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 12})
	m, _ = m.(App).Update(PublishChanged{Status: publish.Publishing})
	view := m.(App).View()
	for _, want := range []string{"first", "Riyadh", "Publishing..."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func TestBridge(t *testing.T) {
	var b Bridge
	b.Notify(notify.Toast{Message: "dropped"})

	ch := make(chanSender, 2)
	b.Attach(ch)
	b.Notify(notify.Toast{Message: "hello"})
	b.Confirm(notify.Prompt{Title: "t"})

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-ch:
			switch m := msg.(type) {
			case ToastMsg:
				got["toast:"+m.Toast.Message] = true
			case ConfirmMsg:
				got["confirm:"+m.Prompt.Title] = true
			}
		case <-time.After(time.Second):
			t.Fatal("bridge did not deliver")
		}
	}
	if !got["toast:hello"] || !got["confirm:t"] {
		t.Errorf("got %v", got)
	}
}
