package dispatch

import (
	"context"
	"log/slog"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
)

// LogMessenger writes messages to a structured logger instead of delivering them.
type LogMessenger struct {
	logger *slog.Logger
}

// NewLogMessenger creates a LogMessenger. A nil logger uses slog.Default().
func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMessenger{logger: logger}
}

// Send logs msg at info level.
func (m *LogMessenger) Send(ctx context.Context, msg domain.Message) error {
	m.logger.InfoContext(ctx, "Bill message",
		slog.String("message_id", msg.MessageID),
		slog.String("recipient_id", msg.RecipientID),
		slog.String("priority", string(msg.Priority)),
		slog.String("title", msg.Title),
		slog.String("amount", msg.Metadata.Amount.StringFixed(domain.CurrencyScale)),
		slog.String("activity_id", msg.Metadata.ActivityID))
	return nil
}
