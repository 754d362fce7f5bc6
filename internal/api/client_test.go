package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token() (string, error) { return s.token, s.err }

func newTestClient(url string) *Client {
	c := NewClient(url, staticToken{token: "tok"}, 5*time.Second, 0)
	c.backoffs = []time.Duration{time.Millisecond, time.Millisecond}
	return c
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		typ  model.ItemType
		want string
	}{
		{model.TypeGeneral, "/posts"},
		{model.TypeShipmentAd, "/shipment-ads"},
		{model.TypeEmptyTruckAd, "/empty-truck-ads"},
	}
	for _, tt := range tests {
		got, err := BasePath(tt.typ)
		if err != nil || got != tt.want {
			t.Errorf("BasePath(%q) = %q, %v; want %q", tt.typ, got, err, tt.want)
		}
	}
	if _, err := BasePath("story"); !errors.Is(err, model.ErrUnknownType) {
		t.Errorf("BasePath(story) err = %v, want ErrUnknownType", err)
	}
}

func TestFetchShapes(t *testing.T) {
	tests := []struct {
		name        string
		typ         model.ItemType
		path        string
		body        string
		wantIDs     []string
		wantSuggest int
	}{
		{
			name:    "bare array",
			typ:     model.TypeGeneral,
			path:    "/posts",
			body:    `[{"_id":"p1"},{"_id":"p2"}]`,
			wantIDs: []string{"p1", "p2"},
		},
		{
			name:        "posts envelope with suggestions",
			typ:         model.TypeGeneral,
			path:        "/posts",
			body:        `{"posts":[{"_id":"p1"}],"suggestedUsers":[{"_id":"u1","name":"Co"},"u2"]}`,
			wantIDs:     []string{"p1"},
			wantSuggest: 2,
		},
		{
			name:    "shipment envelope",
			typ:     model.TypeShipmentAd,
			path:    "/shipment-ads",
			body:    `{"shipmentAds":[{"_id":"s1"}]}`,
			wantIDs: []string{"s1"},
		},
		{
			name:        "data envelope",
			typ:         model.TypeEmptyTruckAd,
			path:        "/empty-truck-ads",
			body:        `{"data":[{"_id":"e1"}],"suggestions":["u9"]}`,
			wantIDs:     []string{"e1"},
			wantSuggest: 1,
		},
		{
			name: "empty body",
			typ:  model.TypeGeneral,
			path: "/posts",
			body: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("unexpected method: %s", r.Method)
				}
				if r.URL.Path != tt.path {
					t.Errorf("unexpected path: %s, want %s", r.URL.Path, tt.path)
				}
				if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
					t.Errorf("unexpected authorization: %s", auth)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			col, err := newTestClient(server.URL).Fetch(context.Background(), tt.typ)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if len(col.Records) != len(tt.wantIDs) {
				t.Fatalf("got %d records, want %d", len(col.Records), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if col.Records[i].ID != id {
					t.Errorf("record %d = %q, want %q", i, col.Records[i].ID, id)
				}
			}
			if len(col.Suggestions) != tt.wantSuggest {
				t.Errorf("got %d suggestions, want %d", len(col.Suggestions), tt.wantSuggest)
			}
		})
	}
}

func TestFetchRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"_id":"p1"}]`))
	}))
	defer server.Close()

	col, err := newTestClient(server.URL).Fetch(context.Background(), model.TypeGeneral)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(col.Records) != 1 {
		t.Errorf("got %d records, want 1", len(col.Records))
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server saw %d calls, want 3", n)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"not yours"}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).DeletePost(context.Background(), model.Target{ID: "p1", Type: model.TypeGeneral})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusForbidden || se.Message != "not yours" {
		t.Errorf("StatusError = %+v", se)
	}
	if se.Temporary() {
		t.Error("403 reported as temporary")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d calls, want 1", n)
	}
}

func TestMutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.ToggleCommentLike(context.Background(), model.Target{ID: "p1", Type: model.TypeGeneral}, "c1")
	if err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d calls, want 1", n)
	}
}

func TestEndpointRouting(t *testing.T) {
	post := model.Target{ID: "p1", Type: model.TypeGeneral}
	ship := model.Target{ID: "s1", Type: model.TypeShipmentAd}
	truck := model.Target{ID: "e1", Type: model.TypeEmptyTruckAd}

	tests := []struct {
		name   string
		call   func(c *Client) error
		method string
		path   string
	}{
		{"like post", func(c *Client) error { return c.LikePost(context.Background(), post) }, http.MethodPut, "/posts/p1/like"},
		{"like comment", func(c *Client) error { return c.ToggleCommentLike(context.Background(), ship, "c1") }, http.MethodPut, "/shipment-ads/s1/comments/c1/like"},
		{"like reply", func(c *Client) error { return c.ToggleReplyLike(context.Background(), truck, "c1", "r1") }, http.MethodPut, "/empty-truck-ads/e1/comments/c1/replies/r1/like"},
		{"delete comment", func(c *Client) error { return c.DeleteComment(context.Background(), post, "c1") }, http.MethodDelete, "/posts/p1/comments/c1"},
		{"delete reply", func(c *Client) error { return c.DeleteReply(context.Background(), ship, "c1", "r1") }, http.MethodDelete, "/shipment-ads/s1/comments/c1/replies/r1"},
		{"delete ad", func(c *Client) error { return c.DeletePost(context.Background(), truck) }, http.MethodDelete, "/empty-truck-ads/e1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.method {
					t.Errorf("method = %s, want %s", r.Method, tt.method)
				}
				if r.URL.Path != tt.path {
					t.Errorf("path = %s, want %s", r.URL.Path, tt.path)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			if err := tt.call(newTestClient(server.URL)); err != nil {
				t.Errorf("call: %v", err)
			}
		})
	}
}

func TestAddReplyBodyAndEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/shipment-ads/s1/comments/c1/replies" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content-type: %s", ct)
		}
		var req textBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "on my way" {
			t.Errorf("text = %q", req.Text)
		}
		w.Write([]byte(`{"ad":{"_id":"s1","comments":[{"_id":"c1","replies":[{"_id":"r1","text":"on my way"}]}]}}`))
	}))
	defer server.Close()

	rec, err := newTestClient(server.URL).AddReply(context.Background(), model.Target{ID: "s1", Type: model.TypeShipmentAd}, "c1", "on my way")
	if err != nil {
		t.Fatalf("AddReply: %v", err)
	}
	if rec.ID != "s1" || len(rec.Comments) != 1 || len(rec.Comments[0].Replies) != 1 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestDetailShapes(t *testing.T) {
	bodies := map[string]string{
		"bare": `{"_id":"p1","comments":[{"_id":"c1"}]}`,
		"post": `{"post":{"_id":"p1","comments":[{"_id":"c1"}]}}`,
		"data": `{"success":true,"data":{"_id":"p1","comments":[{"_id":"c1"}]}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/posts/p1" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.Write([]byte(body))
			}))
			defer server.Close()

			rec, err := newTestClient(server.URL).Detail(context.Background(), model.Target{ID: "p1", Type: model.TypeGeneral})
			if err != nil {
				t.Fatalf("Detail: %v", err)
			}
			if rec.ID != "p1" || len(rec.Comments) != 1 {
				t.Errorf("unexpected record: %+v", rec)
			}
		})
	}
}

func TestNoCredential(t *testing.T) {
	errNoToken := errors.New("no token")
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken{err: errNoToken}, time.Second, 0)
	_, err := c.Fetch(context.Background(), model.TypeGeneral)
	if !errors.Is(err, errNoToken) {
		t.Errorf("err = %v, want wrapped token error", err)
	}
	if calls.Load() != 0 {
		t.Error("request sent without a credential")
	}
}

func TestInvalidTarget(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", staticToken{token: "tok"}, time.Second, 0)
	if err := c.LikePost(context.Background(), model.Target{Type: model.TypeGeneral}); !errors.Is(err, model.ErrMissingID) {
		t.Errorf("err = %v, want ErrMissingID", err)
	}
	if _, err := c.Detail(context.Background(), model.Target{ID: "x", Type: "story"}); !errors.Is(err, model.ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
}
