// Package model defines the UI-shaped types the engine works on and the
// normalizer that maps heterogeneous server records onto them.
package model

import (
	"errors"
	"time"
)

// ItemType tags which collection a feed item came from.
type ItemType string

const (
	TypeGeneral      ItemType = "general"
	TypeShipmentAd   ItemType = "shipmentAd"
	TypeEmptyTruckAd ItemType = "emptyTruckAd"
)

// ErrUnknownType is returned when an endpoint cannot be routed for a type.
var ErrUnknownType = errors.New("unknown content type")

// Valid reports whether t is one of the three known types.
func (t ItemType) Valid() bool {
	switch t {
	case TypeGeneral, TypeShipmentAd, TypeEmptyTruckAd:
		return true
	}
	return false
}

// ItemTypes lists the feed collections in merge order. Ties in CreatedAt are
// broken by this order.
var ItemTypes = []ItemType{TypeGeneral, TypeShipmentAd, TypeEmptyTruckAd}

// User is an author reference.
type User struct {
	ID     string
	Name   string
	Avatar string
}

// Reaction is one user's reaction to a post.
type Reaction struct {
	UserID string
	Type   string
}

// Route is the pickup/delivery pair of a shipment ad.
type Route struct {
	From string
	To   string
}

// Truck describes an empty-truck ad.
type Truck struct {
	Type        string
	Location    string
	Destination string
	AvailableAt time.Time
}

// FeedItem is a normalized post, shipment ad or empty-truck ad.
type FeedItem struct {
	ID        string
	Type      ItemType
	CreatedAt time.Time
	Author    User
	Reactions []Reaction

	// IsNew marks the freshly published item for its entry animation.
	IsNew bool

	Text         string
	Media        []string
	Route        *Route // shipment ads
	Truck        *Truck // empty-truck ads
	CommentCount int
}

// Target returns the routing target for this item's endpoints.
func (f FeedItem) Target() Target {
	return Target{ID: f.ID, Type: f.Type}
}

// ReactedBy reports whether userID has any reaction on the item.
func (f FeedItem) ReactedBy(userID string) bool {
	for _, r := range f.Reactions {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Target identifies a post or ad for endpoint routing.
type Target struct {
	ID   string
	Type ItemType
}

// Validate checks that the target can be routed.
func (t Target) Validate() error {
	if t.ID == "" {
		return ErrMissingID
	}
	if !t.Type.Valid() {
		return ErrUnknownType
	}
	return nil
}

// Comment is a UI-shaped comment with its replies.
type Comment struct {
	ID        string
	Author    User
	Text      string
	CreatedAt time.Time

	Liked     bool
	LikeCount int
	// Disliked is a local annotation that is never synced.
	Disliked bool
	// IsSending marks an optimistic placeholder awaiting the server.
	IsSending bool

	ReplyCount int
	Replies    []Reply
}

// Reply is a UI-shaped reply to a comment.
type Reply struct {
	ID        string
	Author    User
	Text      string
	CreatedAt time.Time

	Liked     bool
	LikeCount int
	Disliked  bool
	IsSending bool
}

// Clone returns a deep copy of c.
func (c Comment) Clone() Comment {
	out := c
	if c.Replies != nil {
		out.Replies = make([]Reply, len(c.Replies))
		copy(out.Replies, c.Replies)
	}
	return out
}

// CloneComments deep-copies a comment tree. A nil tree stays nil.
func CloneComments(in []Comment) []Comment {
	if in == nil {
		return nil
	}
	out := make([]Comment, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// CloneItems copies a feed list. Slices inside items are shared; items are
// replaced wholesale, never mutated through those slices.
func CloneItems(in []FeedItem) []FeedItem {
	if in == nil {
		return nil
	}
	out := make([]FeedItem, len(in))
	copy(out, in)
	return out
}
