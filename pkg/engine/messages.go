package engine

import (
	"context"
	"errors"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/store"
)

// SendMessage sends a message from the current user. m is not modified;
// the stored message, with its fresh id and sender, is returned.
func (c *Conn) SendMessage(ctx context.Context, m *models.Message) (*models.Message, error) {
	msg := *m
	msg.ID = ""
	op := policy.Op{Operation: policy.OpInsert, Collection: policy.Messages, Target: msg.ToUserID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if msg.FromUserID == "" {
			msg.FromUserID = id.UserID
		}
		if err := policy.CheckInsertMessage(id, &msg); err != nil {
			return err
		}
		if _, err := tx.GetUserByID(ctx, msg.ToUserID); err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				return models.ErrUnknownRecipient
			}
			return err
		}
		_, err := tx.CreateMessage(ctx, &msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetMessage returns a message the current user sent or received.
func (c *Conn) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	var m *models.Message
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Messages, Target: messageID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		m, err = tx.GetMessage(ctx, messageID, policy.VisibleMessages(id))
		return err
	})
	return m, err
}

// ListMessages returns the visible messages matching filter.
func (c *Conn) ListMessages(ctx context.Context, filter models.MessageFilter) ([]*models.Message, error) {
	var messages []*models.Message
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Messages}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		messages, err = tx.ListMessages(ctx, filter, policy.VisibleMessages(id))
		return err
	})
	return messages, err
}

// UpdateMessage replaces the body of a message the current user sent.
// Sender and recipient never change.
func (c *Conn) UpdateMessage(ctx context.Context, messageID, body string) (*models.Message, error) {
	var m *models.Message
	op := policy.Op{Operation: policy.OpUpdate, Collection: policy.Messages, Target: messageID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		current, err := tx.GetMessage(ctx, messageID, policy.VisibleMessages(id))
		if err != nil && !errors.Is(err, models.ErrMessageNotFound) {
			return err
		}
		if err := policy.CheckTarget(id, policy.OpUpdate, policy.Messages, current != nil); err != nil {
			return err
		}
		if err := policy.CheckUpdateMessage(id, current); err != nil {
			return err
		}
		if err := tx.UpdateMessageBody(ctx, messageID, body); err != nil {
			return err
		}
		m, err = tx.GetMessage(ctx, messageID)
		return err
	})
	return m, err
}

// DeleteMessage removes one message. Only holders of the delete
// capability may, including for messages they sent.
func (c *Conn) DeleteMessage(ctx context.Context, messageID string) error {
	op := policy.Op{Operation: policy.OpDelete, Collection: policy.Messages, Target: messageID}
	return c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckDelete(id, policy.Messages); err != nil {
			return err
		}
		n, err := tx.DeleteMessages(ctx, []string{messageID})
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrMessageNotFound
		}
		return nil
	})
}

// DeleteMessages removes every message matching filter. It needs the
// delete capability; without it nothing is deleted.
func (c *Conn) DeleteMessages(ctx context.Context, filter models.MessageFilter) (int64, error) {
	var n int64
	op := policy.Op{Operation: policy.OpDelete, Collection: policy.Messages, Target: filter.FromUserID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckDelete(id, policy.Messages); err != nil {
			return err
		}
		ids, err := tx.MessageIDs(ctx, filter)
		if err != nil {
			return err
		}
		n, err = tx.DeleteMessages(ctx, ids)
		return err
	})
	return n, err
}
