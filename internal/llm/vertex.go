package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// VertexClient talks to the Vertex AI generateContent REST endpoint.
type VertexClient struct {
	projectID  string
	location   string
	model      string
	httpClient *http.Client
}

// NewVertexClient builds a client using Application Default Credentials.
func NewVertexClient(ctx context.Context, projectID, location, model string, timeout time.Duration) (*VertexClient, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("location is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("vertex credentials: %w", err)
	}
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = timeout

	return &VertexClient{
		projectID:  projectID,
		location:   location,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// ModelID returns the configured model name.
func (c *VertexClient) ModelID() string { return c.model }

// --- wire types ---

type vertexPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *vertexInlineData `json:"inlineData,omitempty"`
}

type vertexInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type vertexContent struct {
	Role  string       `json:"role"`
	Parts []vertexPart `json:"parts"`
}

type generateRequest struct {
	Contents []vertexContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content vertexContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int32 `json:"promptTokenCount"`
		CandidatesTokenCount int32 `json:"candidatesTokenCount"`
		TotalTokenCount      int32 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (c *VertexClient) endpoint() string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		c.location, c.projectID, c.location, c.model,
	)
}

// Generate submits history plus one new user turn and returns the model reply.
func (c *VertexClient) Generate(ctx context.Context, history []Turn, parts []Part) (Reply, error) {
	contents := make([]vertexContent, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, toVertexContent(turn.Role, turn.Parts))
	}
	contents = append(contents, toVertexContent(RoleUser, parts))

	payload, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return Reply{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("vertex request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Reply{}, fmt.Errorf("vertex returned %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Reply{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return Reply{}, fmt.Errorf("vertex returned no candidates")
	}

	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	reply := Reply{Text: text.String()}
	if um := decoded.UsageMetadata; um != nil {
		reply.Usage = &Usage{
			InputTokens:  um.PromptTokenCount,
			OutputTokens: um.CandidatesTokenCount,
			TotalTokens:  um.TotalTokenCount,
		}
	}
	return reply, nil
}

func toVertexContent(role string, parts []Part) vertexContent {
	out := vertexContent{Role: role, Parts: make([]vertexPart, 0, len(parts))}
	for _, p := range parts {
		if p.Data != nil {
			out.Parts = append(out.Parts, vertexPart{InlineData: &vertexInlineData{
				MimeType: p.MIME,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		out.Parts = append(out.Parts, vertexPart{Text: p.Text})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
