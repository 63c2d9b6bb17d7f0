package repository

import (
	"context"
	"database/sql"

	"github.com/relayline/sms-assistant/internal/model"
)

// MessageRepo provides access to the messages, sms_delivery_log and
// usage_analytics tables.  All three are append-only: messages keeps
// the conversation transcript, sms_delivery_log records gateway
// outcomes, and usage_analytics records intent labels and response
// times for answered queries.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

// InsertInbound appends a user text to the transcript.
func (r *MessageRepo) InsertInbound(ctx context.Context, phone, body string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (phone, direction, body, response_ms) VALUES (?,?,?,0)",
		phone, model.DirectionInbound, body)
	return err
}

// InsertAssistant appends an assistant reply. responseMs is zero for
// system-originated messages (prompts, notices) because they are not
// query answers.
func (r *MessageRepo) InsertAssistant(ctx context.Context, phone, body string, responseMs int64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (phone, direction, body, response_ms) VALUES (?,?,?,?)",
		phone, model.DirectionAssistant, body, responseMs)
	return err
}

// AppendDelivery records one gateway delivery attempt, success or not.
func (r *MessageRepo) AppendDelivery(ctx context.Context, phone, status, providerMessageID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sms_delivery_log (phone, status, provider_message_id) VALUES (?,?,?)",
		phone, status, providerMessageID)
	return err
}

// RecentByPhone returns the newest transcript rows for a phone, newest
// first, capped at limit.
func (r *MessageRepo) RecentByPhone(ctx context.Context, phone string, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, phone, direction, body, response_ms, created_at FROM messages WHERE phone=? ORDER BY id DESC LIMIT ?",
		phone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Phone, &m.Direction, &m.Body, &m.ResponseMs, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AppendAnalytics records the intent label and latency of an answered query.
func (r *MessageRepo) AppendAnalytics(ctx context.Context, phone, intent string, responseMs int64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO usage_analytics (phone, intent, response_ms) VALUES (?,?,?)",
		phone, intent, responseMs)
	return err
}
