package usage

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/brightclass/aigateway/internal/db/sqlc"
)

// Service persists token usage rows. Recording is a best-effort side channel:
// failures are logged and swallowed so they can never fail the invocation that
// produced them.
type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

// NewService creates a usage service.
func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "usage")),
	}
}

// Record writes one usage row. A nil Counters means the vendor did not report
// token metadata; nothing is persisted and a diagnostic is emitted. The method
// deliberately has no error result.
func (s *Service) Record(ctx context.Context, input RecordInput) {
	if input.Counters == nil {
		s.logger.Warn("usage metadata missing, skipping token accounting",
			slog.String("action", input.Action),
			slog.String("tenant_id", input.TenantID),
			slog.String("conversation_id", input.ConversationID))
		return
	}

	total := input.Counters.TotalTokens
	if total == 0 {
		total = input.Counters.InputTokens + input.Counters.OutputTokens
	}

	_, err := s.queries.CreateLlmTokenUsage(ctx, sqlc.CreateLlmTokenUsageParams{
		TenantID:       toPgText(input.TenantID),
		ConversationID: input.ConversationID,
		Action:         input.Action,
		Model:          input.Model,
		InputTokens:    input.Counters.InputTokens,
		OutputTokens:   input.Counters.OutputTokens,
		TotalTokens:    total,
	})
	if err != nil {
		s.logger.Error("record token usage failed",
			slog.String("action", input.Action),
			slog.String("tenant_id", input.TenantID),
			slog.String("conversation_id", input.ConversationID),
			slog.Any("error", err))
	}
}

// List returns usage rows for one tenant, newest first.
func (s *Service) List(ctx context.Context, tenantID string) ([]Row, error) {
	rows, err := s.queries.ListLlmTokenUsageByTenant(ctx, toPgText(tenantID))
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRow(r))
	}
	return out, nil
}

func toRow(r sqlc.LlmTokenUsage) Row {
	row := Row{
		ConversationID: r.ConversationID,
		Action:         r.Action,
		Model:          r.Model,
		InputTokens:    r.InputTokens,
		OutputTokens:   r.OutputTokens,
		TotalTokens:    r.TotalTokens,
	}
	if r.ID.Valid {
		row.ID = r.ID.String()
	}
	if r.TenantID.Valid {
		row.TenantID = r.TenantID.String
	}
	if r.CreatedAt.Valid {
		row.CreatedAt = r.CreatedAt.Time
	}
	return row
}

func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}
