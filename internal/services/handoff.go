package services

import (
	"context"
	"log/slog"

	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/google/uuid"
)

// HandoffResult is what a caller needs to open the prefilled chat.
type HandoffResult struct {
	RedirectURL string `json:"redirect_url"`
	Message     string `json:"message"`
}

// HandoffMeta describes who triggered a handoff, for the audit log only.
type HandoffMeta struct {
	UserID    *uuid.UUID
	IP        string
	UserAgent string
}

// Messenger turns a message into a deep link to the support chat and
// records that it happened. Recording never fails the request.
type Messenger struct {
	number string
	log    models.HandoffLog
	logger *slog.Logger
}

func NewMessenger(number string, log models.HandoffLog, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{number: number, log: log, logger: logger}
}

func (m *Messenger) Handoff(ctx context.Context, kind, message string, meta HandoffMeta) *HandoffResult {
	res := &HandoffResult{
		RedirectURL: helpers.WhatsAppLink(m.number, message),
		Message:     message,
	}

	if m.log != nil {
		entry := &models.Handoff{Kind: kind, IPAddress: meta.IP, UserAgent: meta.UserAgent}
		if meta.UserID != nil {
			id := meta.UserID.String()
			entry.UserID = &id
		}
		if err := m.log.RecordHandoff(ctx, entry); err != nil {
			m.logger.Warn("failed to record handoff", "kind", kind, "error", err)
		}
	}
	return res
}
