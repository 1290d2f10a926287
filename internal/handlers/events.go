package handlers

import (
	"context"
	"encoding/json"

	"github.com/valyala/fastjson"

	"chat-service/internal/models"
)

var eventParsers fastjson.ParserPool

// handleEvent validates the raw frame and dispatches on its event tag. Every
// failure is reported to the originating client only.
func (g *Gateway) handleEvent(ctx context.Context, client *Client, raw []byte) {
	p := eventParsers.Get()
	defer eventParsers.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		g.sendError(client, models.ErrCodeBadRequest, "invalid JSON")
		return
	}

	switch event := string(v.GetStringBytes("event")); event {
	case models.EventChat:
		g.handleChat(ctx, client, raw)
	case models.EventMoreMessages:
		g.handleMoreMessages(ctx, client, raw)
	default:
		g.logger.Debug().Str("event", event).Str("conn_id", client.ID).Msg("unknown event")
		g.sendError(client, models.ErrCodeBadRequest, "unknown event")
	}
}

func (g *Gateway) handleChat(ctx context.Context, client *Client, raw []byte) {
	var payload models.ChatPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.sendError(client, models.ErrCodeBadRequest, "malformed chat payload")
		return
	}

	if !models.ValidMessageType(payload.MessageType) {
		g.sendError(client, models.ErrCodeBadRequest, "unsupported message type")
		return
	}
	if payload.MessageType != models.MessageTypeText && (payload.FileName == "" || len(payload.FileBytes) == 0) {
		g.sendError(client, models.ErrCodeBadRequest, "attachment messages need file_name and file_bytes")
		return
	}

	msg := &models.Message{
		UserID:      client.UserID,
		RoomID:      client.RoomID,
		Username:    client.Username,
		Content:     payload.Content,
		MessageType: payload.MessageType,
	}
	if payload.FileName != "" {
		name := payload.FileName
		msg.FileName = &name
	}

	if err := g.chat.SaveMessage(ctx, msg, payload.FileBytes); err != nil {
		g.logger.Error().Err(err).Str("room_id", client.RoomID).Msg("save message failed")
		g.sendError(client, models.ErrCodeInternal, "could not save message")
		return
	}

	g.registry.Broadcast(client.RoomID, models.ChatEvent{
		Event:   models.EventChat,
		Message: *msg,
	}, "")
}

func (g *Gateway) handleMoreMessages(ctx context.Context, client *Client, raw []byte) {
	var payload models.MorePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.sendError(client, models.ErrCodeBadRequest, "malformed pagination payload")
		return
	}
	if payload.OldestMessageID <= 0 {
		g.sendError(client, models.ErrCodeBadRequest, "oldest_message_id must be positive")
		return
	}

	page, err := g.chat.History(ctx, client.RoomID, payload.OldestMessageID)
	if err != nil {
		g.logger.Error().Err(err).Str("room_id", client.RoomID).Msg("load history page failed")
		g.sendError(client, models.ErrCodeInternal, "could not load messages")
		return
	}

	if err := client.SendJSON(models.MessagesEvent{Event: models.EventMoreResult, Messages: page}); err != nil {
		g.logger.Error().Err(err).Str("conn_id", client.ID).Msg("send history page failed")
	}
}

func (g *Gateway) sendError(client *Client, code, message string) {
	if err := client.SendJSON(models.ErrorEvent{
		Event:   models.EventError,
		Code:    code,
		Message: message,
	}); err != nil {
		g.logger.Error().Err(err).Str("conn_id", client.ID).Msg("send error event failed")
	}
}
