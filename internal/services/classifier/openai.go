package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxLabelsInPrompt caps how many labels a single request may carry
	MaxLabelsInPrompt = 200

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GroupLabels asks the model to partition tag labels into groups of related
// labels. The raw response is normalized against the input set, so the result
// is always a full partition of the distinct input labels.
func (p *OpenAIProvider) GroupLabels(ctx context.Context, labels []string) ([]annotation.TagGroup, error) {
	if len(labels) == 0 {
		return []annotation.TagGroup{}, nil
	}
	if len(labels) > MaxLabelsInPrompt {
		labels = labels[:MaxLabelsInPrompt]
	}

	prompt := buildGroupingPrompt(labels)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a helpful assistant that groups annotation tag labels by meaning. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "group_labels"),
			zap.String("model", p.model),
			zap.Int("label_count", len(labels)),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePreview(prompt, true)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "group_labels"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Duration("latency_ms", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to group labels: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to group labels: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "group_labels"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizePreview(content, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	groups, err := parseGroupingResponse(content)
	if err != nil {
		return nil, err
	}

	return NormalizeGroups(labels, groups), nil
}

func buildGroupingPrompt(labels []string) string {
	var b strings.Builder
	b.WriteString("Group the following annotation tag labels so that labels with the same meaning ")
	b.WriteString("(synonyms, singular/plural forms, abbreviations, misspellings) share a group. ")
	b.WriteString("Every label must appear in exactly one group. Use the clearest member as the group name.\n\n")
	b.WriteString("Labels:\n")
	for _, l := range labels {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with JSON of the form ")
	b.WriteString(`{"groups": [{"name": "...", "members": ["...", "..."]}]}`)
	return b.String()
}

func parseGroupingResponse(content string) ([]annotation.TagGroup, error) {
	var parsed struct {
		Groups []annotation.TagGroup `json:"groups"`
	}
	raw := content
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		// Some models wrap the JSON in prose; retry on the outermost object
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse grouping response: %w", err)
		}
	}
	return parsed.Groups, nil
}
