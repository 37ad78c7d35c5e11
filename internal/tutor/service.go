package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brightclass/aigateway/internal/content"
	"github.com/brightclass/aigateway/internal/llm"
	"github.com/brightclass/aigateway/internal/session"
	"github.com/brightclass/aigateway/internal/usage"
)

const defaultAction = "unknown_action"

// ContentResolver materializes a content reference into bytes plus MIME type.
type ContentResolver interface {
	Resolve(ctx context.Context, ref content.Reference) ([]byte, string, error)
}

// Recorder persists usage accounting. Implementations must swallow their own
// failures; recording is never allowed to fail an invocation.
type Recorder interface {
	Record(ctx context.Context, input usage.RecordInput)
}

// AskInput is one turn-based invocation request.
type AskInput struct {
	TenantID       string
	ConversationID string
	System         string
	References     []content.Reference
	Question       string
	Action         string
}

// Answer is the model's reply plus the usage counters, when reported.
type Answer struct {
	Text  string
	Usage *llm.Usage
}

// Service assembles multi-part requests against per-conversation state,
// deduplicating previously sent attachments, and hands usage counters to the
// recorder after each successful call.
type Service struct {
	registry *session.Registry
	resolver ContentResolver
	client   llm.Client
	model    string
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates the invocation service. model is the identifier written
// into usage rows.
func NewService(log *slog.Logger, registry *session.Registry, resolver ContentResolver, client llm.Client, model string, recorder Recorder) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		registry: registry,
		resolver: resolver,
		client:   client,
		model:    model,
		recorder: recorder,
		logger:   log.With(slog.String("service", "tutor")),
		now:      time.Now,
	}
}

// Ask runs one invocation: system instruction first, then any attachment not
// yet seen by this conversation, then the question text, submitted as one new
// turn on the conversation's history.
//
// The conversation's own lock is held from part assembly through the model
// call, so at most one invocation per conversation is in flight; unrelated
// conversations proceed concurrently. Fingerprints are marked seen only after
// the model call succeeds, keeping retries correct.
func (s *Service) Ask(ctx context.Context, input AskInput) (Answer, error) {
	if strings.TrimSpace(input.TenantID) == "" {
		return Answer{}, fmt.Errorf("tenant id is required")
	}
	if strings.TrimSpace(input.ConversationID) == "" {
		return Answer{}, fmt.Errorf("conversation id is required")
	}
	if strings.TrimSpace(input.Question) == "" {
		return Answer{}, fmt.Errorf("question is required")
	}
	action := input.Action
	if action == "" {
		action = defaultAction
	}

	key := session.Key{TenantID: input.TenantID, ConversationID: input.ConversationID}
	conv := s.registry.GetOrCreate(key)

	conv.Lock()
	defer conv.Unlock()

	parts := make([]llm.Part, 0, len(input.References)+2)
	if input.System != "" {
		parts = append(parts, llm.TextPart(input.System))
	}

	// Digests of attachments included in this request; marked on the
	// conversation only after the model call succeeds.
	pending := make([]string, 0, len(input.References))
	pendingSet := make(map[string]struct{}, len(input.References))

	for _, ref := range input.References {
		data, mimeType, err := s.resolver.Resolve(ctx, ref)
		if err != nil {
			return Answer{}, &ContentError{Locator: ref.Locator, Err: err}
		}
		digest := content.Fingerprint(data)
		if conv.Seen(digest) {
			continue
		}
		if _, dup := pendingSet[digest]; dup {
			continue
		}
		parts = append(parts, llm.DataPart(mimeType, data))
		pending = append(pending, digest)
		pendingSet[digest] = struct{}{}
	}

	parts = append(parts, llm.TextPart(input.Question))

	reply, err := s.client.Generate(ctx, conv.History(), parts)
	if err != nil {
		return Answer{}, &InvocationError{Action: action, Err: err}
	}

	for _, digest := range pending {
		conv.MarkSeen(digest)
	}
	conv.Append(
		llm.Turn{Role: llm.RoleUser, Parts: parts},
		llm.Turn{Role: llm.RoleModel, Parts: []llm.Part{llm.TextPart(reply.Text)}},
	)
	conv.Touch(s.now())

	// Best-effort accounting; detached from request cancellation so a client
	// disconnect after a successful call still produces a row.
	s.recorder.Record(context.WithoutCancel(ctx), usage.RecordInput{
		TenantID:       input.TenantID,
		ConversationID: input.ConversationID,
		Action:         action,
		Model:          s.model,
		Counters:       reply.Usage,
	})

	s.logger.Debug("invocation complete",
		slog.String("tenant_id", input.TenantID),
		slog.String("conversation_id", input.ConversationID),
		slog.String("action", action),
		slog.Int("new_attachments", len(pending)))

	return Answer{Text: reply.Text, Usage: reply.Usage}, nil
}

// Forget discards one conversation's state.
func (s *Service) Forget(tenantID, conversationID string) {
	s.registry.Evict(session.Key{TenantID: tenantID, ConversationID: conversationID})
}

// ForgetTenant discards every conversation for a tenant and reports how many
// were removed.
func (s *Service) ForgetTenant(tenantID string) int {
	return s.registry.EvictTenant(tenantID)
}
