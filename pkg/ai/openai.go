package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Subsystem: "ai",
		Name:      "assistant_duration_seconds",
		Help:      "Duration of help assistant requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "ai",
		Name:      "assistant_failures_total",
		Help:      "Number of help assistant failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI assistant.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAssistant implements Assistant against the OpenAI chat completion API.
type OpenAIAssistant struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAssistant builds a new assistant using the provided configuration.
func NewOpenAIAssistant(cfg OpenAIConfig) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/cascadia-commons/portal-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIAssistant{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Ask sends the question to OpenAI and parses the structured response.
func (a *OpenAIAssistant) Ask(parent context.Context, question Question) (Answer, error) {
	ctx, span := a.tracer.Start(parent, "openai.ask", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: assistantSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(question),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(a.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Answer{}, fmt.Errorf("openai ask: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Answer{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	answer, err := parseAnswer(content)
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Answer{}, err
	}

	answer.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return answer, nil
}

func assistantSystemPrompt() string {
	return "You are the help assistant for a community organisation's membership portal. Answer questions about membership " +
		"tiers, billing, volunteer hours, the 30-hour fee waiver, events, and announcements. Respond with a JSON object " +
		"containing answer (string) and optional suggestions (array of short follow-up prompts). Keep answers under 200 words " +
		"and direct members to a human administrator for account-specific billing disputes."
}

func buildUserPrompt(question Question) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(question.Text)
	if question.Topic != "" {
		builder.WriteString("\n\n## Topic\n")
		builder.WriteString(question.Topic)
	}
	if question.MemberName != "" {
		builder.WriteString("\n\n## Member\n")
		builder.WriteString(question.MemberName)
		builder.WriteString(" (role: ")
		builder.WriteString(question.MemberRole)
		builder.WriteString(")")
	}
	if question.WaiverSummary != "" {
		builder.WriteString("\n\n## Volunteer status\n")
		builder.WriteString(question.WaiverSummary)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseAnswer(content string) (Answer, error) {
	type payload struct {
		Answer      string   `json:"answer"`
		Suggestions []string `json:"suggestions"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return Answer{}, fmt.Errorf("parse assistant json: %w", err)
	}

	if strings.TrimSpace(data.Answer) == "" {
		return Answer{}, fmt.Errorf("assistant returned an empty answer")
	}

	return Answer{
		Text:        data.Answer,
		Suggestions: data.Suggestions,
	}, nil
}
