package pgsql

import (
	"context"
	"encoding/json"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/costshare_ledger/internal/models"
	"github.com/SscSPs/costshare_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMessageRepository struct {
	BaseRepository
}

// newPgxMessageRepository creates the inbox-backed message store.
func newPgxMessageRepository(pool *pgxpool.Pool) portsrepo.MessageRepository {
	return &PgxMessageRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MessageRepository = (*PgxMessageRepository)(nil)

// Send inserts msg into the messages table.
func (r *PgxMessageRepository) Send(ctx context.Context, msg domain.Message) error {
	m, err := mapping.ToModelMessage(msg)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode message", err)
	}
	query := `
		INSERT INTO messages (message_id, recipient_id, sender_id, title, content, priority, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = r.Pool.Exec(ctx, query, m.MessageID, m.RecipientID, m.SenderID, m.Title, m.Content, m.Priority, m.Metadata, m.CreatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to store message for "+m.RecipientID, err)
	}
	return nil
}

// ListMessagesByRecipient returns a user's newest messages.
func (r *PgxMessageRepository) ListMessagesByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT message_id, recipient_id, sender_id, title, content, priority, metadata, created_at
		FROM messages
		WHERE recipient_id = $1
		ORDER BY created_at DESC, message_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query messages for "+recipientID, err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.MessageID, &m.RecipientID, &m.SenderID, &m.Title, &m.Content, &m.Priority, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan message row", err)
		}
		msg := domain.Message{
			MessageID:   m.MessageID,
			RecipientID: m.RecipientID,
			SenderID:    m.SenderID,
			Title:       m.Title,
			Content:     m.Content,
			Priority:    domain.MessagePriority(m.Priority),
			CreatedAt:   m.CreatedAt,
		}
		if len(m.Metadata) > 0 {
			if err := json.Unmarshal(m.Metadata, &msg.Metadata); err != nil {
				return nil, apperrors.NewAppError(500, "failed to decode metadata of message "+m.MessageID, err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating message rows", err)
	}
	return messages, nil
}
