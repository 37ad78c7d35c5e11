package usage

import (
	"time"

	"github.com/brightclass/aigateway/internal/llm"
)

// RecordInput describes one completed model invocation. TenantID may be empty
// for system-initiated calls; Counters may be nil when the vendor omitted
// usage metadata.
type RecordInput struct {
	TenantID       string
	ConversationID string
	Action         string
	Model          string
	Counters       *llm.Usage
}

// Row is one persisted usage entry.
type Row struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id,omitempty"`
	ConversationID string    `json:"conversation_id"`
	Action         string    `json:"action"`
	Model          string    `json:"model"`
	InputTokens    int32     `json:"input_tokens"`
	OutputTokens   int32     `json:"output_tokens"`
	TotalTokens    int32     `json:"total_tokens"`
	CreatedAt      time.Time `json:"created_at"`
}
