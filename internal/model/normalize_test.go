package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRecordDecodesFlexibleShapes(t *testing.T) {
	raw := `{
		"_id": "c1",
		"createdAt": "2024-03-01T10:00:00Z",
		"user": {"_id": "u1", "name": "Salah", "avatar": "a.png"},
		"text": "hello",
		"likes": ["u2", {"user": "u3"}, {"user": {"_id": "u4"}}],
		"replies": [
			{"_id": "r2", "createdAt": 1709290800000, "user": "u5", "text": "later", "likes": []},
			{"_id": "r1", "createdAt": "2024-03-01T10:30:00Z", "user": "u6", "text": "earlier", "likes": [{"user": "viewer"}]}
		]
	}`

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.User.ID != "u1" || rec.User.Name != "Salah" {
		t.Errorf("user = %+v", rec.User)
	}
	if len(rec.Likes) != 3 || rec.Likes[1].UserID != "u3" || rec.Likes[2].UserID != "u4" {
		t.Errorf("likes = %+v", rec.Likes)
	}

	c := NormalizeComment(rec, "viewer")
	if c.LikeCount != 3 || c.Liked {
		t.Errorf("comment like state = %v/%d", c.Liked, c.LikeCount)
	}
	if c.ReplyCount != 2 {
		t.Fatalf("ReplyCount = %d", c.ReplyCount)
	}
	// 1709290800000 ms is 2024-03-01T11:00:00Z, after r1.
	if c.Replies[0].ID != "r1" || c.Replies[1].ID != "r2" {
		t.Errorf("replies not ascending: %s, %s", c.Replies[0].ID, c.Replies[1].ID)
	}
	if !c.Replies[0].Liked {
		t.Error("viewer like on r1 not detected")
	}
}

func TestNormalizeFeedItemTypes(t *testing.T) {
	ts := Timestamp{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

	ship, err := NormalizeFeedItem(Record{
		ID: "s1", CreatedAt: ts, Description: "fragile",
		PickupLocation: "Riyadh", DeliveryLocation: "Jeddah",
	}, TypeShipmentAd)
	if err != nil {
		t.Fatalf("shipment: %v", err)
	}
	if ship.Route == nil || ship.Route.From != "Riyadh" || ship.Route.To != "Jeddah" {
		t.Errorf("route = %+v", ship.Route)
	}
	if ship.Text != "fragile" || ship.Truck != nil {
		t.Errorf("shipment fields = %+v", ship)
	}

	truck, err := NormalizeFeedItem(Record{
		AltID: "t1", CreatedAt: ts, TruckType: "flatbed",
		CurrentLocation: "Dammam", PreferredDestination: "Riyadh",
	}, TypeEmptyTruckAd)
	if err != nil {
		t.Fatalf("truck: %v", err)
	}
	if truck.ID != "t1" {
		t.Errorf("id fallback to AltID failed: %q", truck.ID)
	}
	if truck.Truck == nil || truck.Truck.Type != "flatbed" || truck.Route != nil {
		t.Errorf("truck = %+v", truck.Truck)
	}

	post, err := NormalizeFeedItem(Record{
		ID: "p1", CreatedAt: ts, Text: "hi",
		Reactions: []ReactionRecord{{User: UserRef{ID: "u1"}, Type: "like"}},
		Comments:  []Record{{ID: "c1"}, {ID: "c2"}},
	}, TypeGeneral)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if post.CommentCount != 2 || !post.ReactedBy("u1") || post.ReactedBy("u2") {
		t.Errorf("post = %+v", post)
	}
	if post.Target() != (Target{ID: "p1", Type: TypeGeneral}) {
		t.Errorf("target = %+v", post.Target())
	}
}

func TestNormalizeFeedItemErrors(t *testing.T) {
	if _, err := NormalizeFeedItem(Record{}, TypeGeneral); !errors.Is(err, ErrMissingID) {
		t.Errorf("missing id err = %v", err)
	}
	if _, err := NormalizeFeedItem(Record{ID: "x"}, ItemType("story")); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type err = %v", err)
	}

	items, skipped := NormalizeFeedItems([]Record{{ID: "a"}, {}, {ID: "b"}}, TypeGeneral)
	if len(items) != 2 || skipped != 1 {
		t.Errorf("NormalizeFeedItems = %d items, %d skipped", len(items), skipped)
	}
}

func TestCreatedAtFallsBackToObjectID(t *testing.T) {
	item, err := NormalizeFeedItem(Record{ID: "507f1f77bcf86cd799439011"}, TypeGeneral)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := time.Unix(0x507f1f77, 0)
	if !item.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", item.CreatedAt, want)
	}

	plain, _ := NormalizeFeedItem(Record{ID: "not-an-oid"}, TypeGeneral)
	if !plain.CreatedAt.IsZero() {
		t.Errorf("non-ObjectID id should leave CreatedAt zero, got %v", plain.CreatedAt)
	}
}

func TestNormalizeCommentsOrdering(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	at := func(m int) Timestamp { return Timestamp{base.Add(time.Duration(m) * time.Minute)} }

	tree := NormalizeComments([]Record{
		{ID: "old", CreatedAt: at(1)},
		{ID: "new", CreatedAt: at(9)},
		{ID: "tieA", CreatedAt: at(5)},
		{ID: "tieB", CreatedAt: at(5)},
		{Text: "no id"},
	}, "")

	want := []string{"new", "tieA", "tieB", "old"}
	if len(tree) != len(want) {
		t.Fatalf("got %d comments, want %d", len(tree), len(want))
	}
	for i, id := range want {
		if tree[i].ID != id {
			t.Errorf("tree[%d] = %s, want %s", i, tree[i].ID, id)
		}
	}
}

func TestCloneCommentsIsDeep(t *testing.T) {
	orig := []Comment{{ID: "c", Replies: []Reply{{ID: "r", LikeCount: 1}}}}
	cp := CloneComments(orig)
	cp[0].Replies[0].LikeCount = 99
	cp[0].Text = "changed"

	if orig[0].Replies[0].LikeCount != 1 || orig[0].Text != "" {
		t.Error("clone shares state with original")
	}
	if CloneComments(nil) != nil {
		t.Error("nil tree should clone to nil")
	}
}
