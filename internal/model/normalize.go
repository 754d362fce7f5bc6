package model

import (
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMissingID is returned for records that carry neither _id nor id.
var ErrMissingID = errors.New("record has no id")

// RecordID returns the stable id of a server record.
func RecordID(r Record) string {
	return firstNonEmpty(r.ID, r.AltID)
}

// createdAt returns the record's timestamp, falling back to the creation
// time embedded in a Mongo ObjectID.
func createdAt(r Record) time.Time {
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt.Time
	}
	if oid, err := primitive.ObjectIDFromHex(RecordID(r)); err == nil {
		return oid.Timestamp()
	}
	return time.Time{}
}

// NormalizeFeedItem maps a post/ad record onto a FeedItem tagged with typ.
func NormalizeFeedItem(r Record, typ ItemType) (FeedItem, error) {
	id := RecordID(r)
	if id == "" {
		return FeedItem{}, ErrMissingID
	}
	if !typ.Valid() {
		return FeedItem{}, ErrUnknownType
	}

	item := FeedItem{
		ID:           id,
		Type:         typ,
		CreatedAt:    createdAt(r),
		Author:       r.User.User(),
		Text:         firstNonEmpty(r.Text, r.Description),
		Media:        r.Media,
		CommentCount: len(r.Comments),
	}
	for _, rr := range r.Reactions {
		item.Reactions = append(item.Reactions, Reaction{UserID: rr.User.ID, Type: rr.Type})
	}

	switch typ {
	case TypeShipmentAd:
		item.Route = &Route{From: r.PickupLocation, To: r.DeliveryLocation}
	case TypeEmptyTruckAd:
		item.Truck = &Truck{
			Type:        r.TruckType,
			Location:    r.CurrentLocation,
			Destination: r.PreferredDestination,
			AvailableAt: r.AvailabilityDate.Time,
		}
	}
	return item, nil
}

// NormalizeFeedItems normalizes a collection, skipping records without an id.
// It returns the number of skipped records.
func NormalizeFeedItems(records []Record, typ ItemType) ([]FeedItem, int) {
	items := make([]FeedItem, 0, len(records))
	skipped := 0
	for _, r := range records {
		item, err := NormalizeFeedItem(r, typ)
		if err != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped
}

func likeState(likes []LikeRef, viewerID string) (bool, int) {
	liked := false
	if viewerID != "" {
		for _, l := range likes {
			if l.UserID == viewerID {
				liked = true
				break
			}
		}
	}
	return liked, len(likes)
}

// NormalizeReply maps a reply record for viewerID.
func NormalizeReply(r Record, viewerID string) Reply {
	liked, count := likeState(r.Likes, viewerID)
	return Reply{
		ID:        RecordID(r),
		Author:    r.User.User(),
		Text:      r.Text,
		CreatedAt: createdAt(r),
		Liked:     liked,
		LikeCount: count,
	}
}

// NormalizeComment maps a comment record and its replies for viewerID.
// Replies come out ascending by CreatedAt.
func NormalizeComment(r Record, viewerID string) Comment {
	liked, count := likeState(r.Likes, viewerID)
	c := Comment{
		ID:        RecordID(r),
		Author:    r.User.User(),
		Text:      r.Text,
		CreatedAt: createdAt(r),
		Liked:     liked,
		LikeCount: count,
	}
	for _, rr := range r.Replies {
		if RecordID(rr) == "" {
			continue
		}
		c.Replies = append(c.Replies, NormalizeReply(rr, viewerID))
	}
	SortReplies(c.Replies)
	c.ReplyCount = len(c.Replies)
	return c
}

// NormalizeComments builds the UI-shaped comment tree of a detail record,
// comments descending and replies ascending by CreatedAt.
func NormalizeComments(records []Record, viewerID string) []Comment {
	out := make([]Comment, 0, len(records))
	for _, r := range records {
		if RecordID(r) == "" {
			continue
		}
		out = append(out, NormalizeComment(r, viewerID))
	}
	SortComments(out)
	return out
}

// SortComments orders comments newest first; equal times keep their order.
func SortComments(cs []Comment) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
}

// SortReplies orders replies oldest first; equal times keep their order.
func SortReplies(rs []Reply) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
}

// SortFeed orders items newest first; equal times keep encounter order.
func SortFeed(items []FeedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
