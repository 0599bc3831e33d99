package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/petmatch-api/internal/model"
)

func TestNotificationTypeValid(t *testing.T) {
	assert.True(t, model.NotificationTypeMatch.Valid())
	assert.True(t, model.NotificationTypeMessage.Valid())
	assert.True(t, model.NotificationTypeInterest.Valid())
	assert.False(t, model.NotificationType("poke").Valid())
	assert.False(t, model.NotificationType("").Valid())
}

func TestDedupKeyPrefersConversationForMessages(t *testing.T) {
	senderID := uuid.New()
	convID := uuid.New()
	staleRef := uuid.New()

	withRef := &model.Notification{
		Type:        model.NotificationTypeMessage,
		SenderID:    &senderID,
		ReferenceID: &staleRef,
		Data:        model.MessageData(convID),
	}
	withoutRef := &model.Notification{
		Type:     model.NotificationTypeMessage,
		SenderID: &senderID,
		Data:     model.MessageData(convID),
	}

	assert.Equal(t, withRef.DedupKey(), withoutRef.DedupKey())
	assert.Equal(t, convID, withRef.DedupKey().Reference)
}

func TestDedupKeyUsesReferenceForOtherTypes(t *testing.T) {
	senderID := uuid.New()
	petID := uuid.New()

	n := &model.Notification{
		Type:        model.NotificationTypeMatch,
		SenderID:    &senderID,
		ReferenceID: &petID,
		Data:        model.MatchData(petID),
	}

	key := n.DedupKey()
	assert.Equal(t, model.NotificationTypeMatch, key.Type)
	assert.Equal(t, senderID, key.SenderID)
	assert.Equal(t, petID, key.Reference)
}

func TestDedupKeySeparatesSenders(t *testing.T) {
	convID := uuid.New()
	senderA := uuid.New()
	senderB := uuid.New()

	a := &model.Notification{Type: model.NotificationTypeMessage, SenderID: &senderA, Data: model.MessageData(convID)}
	b := &model.Notification{Type: model.NotificationTypeMessage, SenderID: &senderB, Data: model.MessageData(convID)}

	assert.NotEqual(t, a.DedupKey(), b.DedupKey())
}

func TestDedupKeyNilFieldsAreStable(t *testing.T) {
	a := &model.Notification{Type: model.NotificationTypeInterest}
	b := &model.Notification{Type: model.NotificationTypeInterest}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
}
