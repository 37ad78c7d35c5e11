package llm

import "context"

// Turn roles as the vendor expects them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one element of a multi-part request: either text or inline binary
// content with its MIME type. Exactly one of Text / Data should be set.
type Part struct {
	Text string
	MIME string
	Data []byte
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// DataPart builds an inline binary part.
func DataPart(mime string, data []byte) Part {
	return Part{MIME: mime, Data: data}
}

// Turn is one exchange entry in a conversation history.
type Turn struct {
	Role  string
	Parts []Part
}

// Usage carries the token counters reported for one model invocation.
type Usage struct {
	InputTokens  int32 `json:"input_tokens"`
	OutputTokens int32 `json:"output_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

// Reply is the narrow view of a model response the gateway depends on.
// Usage is nil when the vendor omitted token metadata.
type Reply struct {
	Text  string
	Usage *Usage
}

// Client submits one turn against an existing history and returns the reply.
// Implementations must honor ctx cancellation.
type Client interface {
	Generate(ctx context.Context, history []Turn, parts []Part) (Reply, error)
}

// Model exposes the configured model identifier for accounting.
type Model interface {
	ModelID() string
}
