package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeMatch    NotificationType = "match"
	NotificationTypeMessage  NotificationType = "message"
	NotificationTypeInterest NotificationType = "interest"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeMatch, NotificationTypeMessage, NotificationTypeInterest:
		return true
	}
	return false
}

// NotificationData is the structured payload stored in the jsonb column.
// Exactly one field is set depending on the notification type; use
// MatchData, MessageData or InterestData to build it.
type NotificationData struct {
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	PetID          *uuid.UUID `json:"pet_id,omitempty"`
}

func MatchData(petID uuid.UUID) *NotificationData {
	return &NotificationData{PetID: &petID}
}

func MessageData(conversationID uuid.UUID) *NotificationData {
	return &NotificationData{ConversationID: &conversationID}
}

func InterestData(petID uuid.UUID) *NotificationData {
	return &NotificationData{PetID: &petID}
}

func (d NotificationData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *NotificationData) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return fmt.Errorf("unsupported notification data type %T", src)
}

type Notification struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	UserID      uuid.UUID         `db:"user_id" json:"user_id"`
	Type        NotificationType  `db:"type" json:"type"`
	SenderID    *uuid.UUID        `db:"sender_id" json:"sender_id,omitempty"`
	Content     *string           `db:"content" json:"content,omitempty"`
	ReferenceID *uuid.UUID        `db:"reference_id" json:"reference_id,omitempty"`
	Data        *NotificationData `db:"data" json:"data,omitempty"`
	IsRead      bool              `db:"is_read" json:"is_read"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// DedupKey identifies the logical event a notification represents. Two
// notifications with the same key describe the same event; only the newest
// survives a dedup pass.
type DedupKey struct {
	Type      NotificationType
	SenderID  uuid.UUID
	Reference uuid.UUID
}

// DedupKey computes the composite key for this notification. For message
// notifications the conversation id embedded in the data payload takes
// precedence over reference_id, which may have been nulled out by
// reference validation.
func (n *Notification) DedupKey() DedupKey {
	key := DedupKey{Type: n.Type}
	if n.SenderID != nil {
		key.SenderID = *n.SenderID
	}
	if n.ReferenceID != nil {
		key.Reference = *n.ReferenceID
	}
	if n.Type == NotificationTypeMessage && n.Data != nil && n.Data.ConversationID != nil {
		key.Reference = *n.Data.ConversationID
	}
	return key
}

// CreateNotificationRequest carries the factory inputs. UserID and Type
// are mandatory, everything else is optional.
type CreateNotificationRequest struct {
	UserID      uuid.UUID         `json:"user_id"`
	Type        NotificationType  `json:"type"`
	SenderID    *uuid.UUID        `json:"sender_id,omitempty"`
	Content     string            `json:"content,omitempty"`
	ReferenceID *uuid.UUID        `json:"reference_id,omitempty"`
	Data        *NotificationData `json:"data,omitempty"`
}

// FieldIssue describes one problem found on a notification during an admin
// integrity scan.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
	Value string `json:"value,omitempty"`
}

type InvalidNotification struct {
	Notification *Notification `json:"notification"`
	Issues       []FieldIssue  `json:"issues"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

type CleanupResult struct {
	Count int `json:"count"`
}
