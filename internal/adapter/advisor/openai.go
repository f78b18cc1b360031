package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
	"gift-advisor/internal/infra/tracer"
)

const (
	trendingPrompt = "Eres un asistente que resume los intereses recientes de una persona " +
		"para ayudar a su equipo a elegir un regalo. Responde en español, en Markdown, " +
		"con un párrafo breve y una lista de viñetas. No inventes datos personales."

	giftIdeasPrompt = "Eres un asistente que sugiere regalos para compañeros de trabajo, " +
		"alineados con una cultura de empresa colaborativa. Responde solo con JSON de la forma " +
		`{"giftIdeas":[{"name":"...","description":"...","link":"..."}]} con exactamente 3 ideas.`
)

// giftIdeasSchema is the contract the model's JSON must meet.
var giftIdeasSchema = []byte(`{
  "type": "object",
  "required": ["giftIdeas"],
  "properties": {
    "giftIdeas": {
      "type": "array",
      "minItems": 1,
      "maxItems": 10,
      "items": {
        "type": "object",
        "required": ["name", "description"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string", "minLength": 1},
          "link": {"type": "string"}
        }
      }
    }
  }
}`)

// OpenAIAdvisor generates suggestions with any OpenAI-compatible chat
// completions API.
type OpenAIAdvisor struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAIAdvisor creates an advisor from configuration.
func NewOpenAIAdvisor(cfg config.AdvisorConfig, logger *slog.Logger) *OpenAIAdvisor {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIAdvisor{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		// Streams can outlive any fixed deadline; only headers are bounded.
		client: &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: timeout,
			ForceAttemptHTTP2:     true,
		}},
		logger: logger,
	}
}

// Name implements domain.Advisor.
func (a *OpenAIAdvisor) Name() string { return "openai" }

// StreamTrending implements domain.Advisor.
func (a *OpenAIAdvisor) StreamTrending(ctx context.Context, member string, emit func(string) error) error {
	ctx, span := tracer.StartSpan(ctx, "advisor.stream_trending",
		trace.WithAttributes(
			tracer.StringAttr("advisor.model", a.model),
			tracer.StringAttr("gift.member", member),
		),
	)
	defer span.End()

	body, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: trendingPrompt},
			{Role: "user", Content: "¿Qué le interesa últimamente a " + member + "?"},
		},
		Stream: true,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("marshal request: %w", err)
	}

	stream, err := doStreamRequest(ctx, a.client, a.baseURL+"/chat/completions", body, a.headers())
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}
	defer stream.Close()

	fragments := 0
	err = readSSE(ctx, stream, func(data []byte) error {
		var chunk chatStreamChunk
		if json.Unmarshal(data, &chunk) != nil || len(chunk.Choices) == 0 {
			// Skip unparseable lines.
			return nil
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			return nil
		}
		fragments++
		return emit(content)
	})
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}

	span.SetAttributes(tracer.IntAttr("advisor.fragments", fragments))
	tracer.SetOK(span)
	a.logger.Debug("trending stream completed", "member", member, "fragments", fragments)
	return nil
}

// GiftIdeas implements domain.Advisor.
func (a *OpenAIAdvisor) GiftIdeas(ctx context.Context, member string) ([]domain.GiftIdea, error) {
	const op = "OpenAIAdvisor.GiftIdeas"
	ctx, span := tracer.StartSpan(ctx, "advisor.gift_ideas",
		trace.WithAttributes(
			tracer.StringAttr("advisor.model", a.model),
			tracer.StringAttr("gift.member", member),
		),
	)
	defer span.End()

	body, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: giftIdeasPrompt},
			{Role: "user", Content: "Ideas de regalo para " + member + "."},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := doJSONRequest(ctx, a.client, a.baseURL+"/chat/completions", body, a.headers())
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		err = domain.NewDomainError(op, domain.ErrProviderError, "unmarshal response: "+err.Error())
		tracer.RecordError(span, err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		err := domain.NewDomainError(op, domain.ErrProviderError, "no choices in response")
		tracer.RecordError(span, err)
		return nil, err
	}

	ideas, err := parseGiftIdeas(resp.Choices[0].Message.Content)
	if err != nil {
		err = domain.NewDomainError(op, err, "model output rejected")
		tracer.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(tracer.IntAttr("advisor.ideas", len(ideas)))
	tracer.SetOK(span)
	return ideas, nil
}

// parseGiftIdeas validates the model's JSON against giftIdeasSchema before
// decoding it.
func parseGiftIdeas(content string) ([]domain.GiftIdea, error) {
	raw := stripCodeFences(content)

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: not JSON: %v", domain.ErrSchemaViolation, err)
	}
	if err := validateJSONSchema(giftIdeasSchema, parsed); err != nil {
		return nil, err
	}

	var out domain.GiftIdeasResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	return out.GiftIdeas, nil
}

func (a *OpenAIAdvisor) headers() map[string]string {
	h := map[string]string{}
	if a.apiKey != "" {
		h["Authorization"] = "Bearer " + a.apiKey
	}
	return h
}

// --- OpenAI API wire types ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

var _ domain.Advisor = (*OpenAIAdvisor)(nil)
