package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Record is the loosely typed server shape shared by posts, ads, comments
// and replies. Only the fields the engine reads are declared.
type Record struct {
	ID        string    `json:"_id"`
	AltID     string    `json:"id,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	User      UserRef   `json:"user"`

	Text        string   `json:"text,omitempty"`
	Description string   `json:"description,omitempty"`
	Media       []string `json:"media,omitempty"`

	Reactions []ReactionRecord `json:"reactions,omitempty"`
	Likes     []LikeRef        `json:"likes,omitempty"`
	Comments  []Record         `json:"comments,omitempty"`
	Replies   []Record         `json:"replies,omitempty"`

	// Shipment ad
	PickupLocation   string `json:"pickupLocation,omitempty"`
	DeliveryLocation string `json:"deliveryLocation,omitempty"`

	// Empty-truck ad
	CurrentLocation      string    `json:"currentLocation,omitempty"`
	PreferredDestination string    `json:"preferredDestination,omitempty"`
	AvailabilityDate     Timestamp `json:"availabilityDate,omitempty"`

	TruckType string `json:"truckType,omitempty"`
}

// Collection is one fetched content collection. Suggestions is the
// company/user suggestion list some responses carry alongside the records.
type Collection struct {
	Records     []Record
	Suggestions []UserRef
}

// ReactionRecord is a post reaction as the server sends it.
type ReactionRecord struct {
	User UserRef `json:"user"`
	Type string  `json:"type"`
}

// UserRef decodes either a bare user id or a populated user object.
type UserRef struct {
	ID     string
	Name   string
	Avatar string
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = UserRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*u = UserRef{ID: id}
		return nil
	}

	var obj struct {
		ID          string `json:"_id"`
		AltID       string `json:"id"`
		Name        string `json:"name"`
		CompanyName string `json:"companyName"`
		Avatar      string `json:"avatar"`
		Image       string `json:"profileImage"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}
	*u = UserRef{
		ID:     firstNonEmpty(obj.ID, obj.AltID),
		Name:   firstNonEmpty(obj.Name, obj.CompanyName),
		Avatar: firstNonEmpty(obj.Avatar, obj.Image),
	}
	return nil
}

// User converts the reference to an author.
func (u UserRef) User() User {
	return User{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string `json:"_id"`
		Name   string `json:"name,omitempty"`
		Avatar string `json:"avatar,omitempty"`
	}{u.ID, u.Name, u.Avatar})
}

// LikeRef decodes a like entry: a user id, or an object with a user field.
type LikeRef struct {
	UserID string
}

func (l *LikeRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &l.UserID)
	}
	var obj struct {
		User UserRef `json:"user"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode like: %w", err)
	}
	l.UserID = obj.User.ID
	return nil
}

func (l LikeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.UserID)
}

// Timestamp accepts RFC 3339 strings, unix milliseconds, "" and null.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		ts.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("decode timestamp %q: %w", s, err)
		}
		ts.Time = t
		return nil
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("decode timestamp %s: %w", data, err)
	}
	ts.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
