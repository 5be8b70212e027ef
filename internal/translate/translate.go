// Package translate turns LLM replies into typed Go values.
//
// A Translator sends a request that demands a JSON-only answer, extracts
// the first JSON object from whatever the model actually returns, and
// strict-decodes it into the target type. Invalid output triggers a single
// repair turn that quotes the bad reply and the validation error back to
// the model. Any OpenAI-compatible chat completions endpoint works.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds one full translation exchange. Netlist analysis
// over a slow local model can legitimately take minutes.
const DefaultTimeout = 3 * time.Minute

// NewOpenAIClient builds a chat completions client for baseURL. Empty
// baseURL keeps the library's default endpoint, empty apiKey means
// anonymous access (local gateways often run without auth).
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// Validator lets a target type veto decoded values.
type Validator interface {
	Validate() error
}

// Translator converts model replies into values of type T.
type Translator[T any] struct {
	client   *openai.Client
	model    string
	validate func(T) error
}

// New creates a Translator for the given client and model.
func New[T any](client *openai.Client, model string) *Translator[T] {
	return &Translator[T]{client: client, model: model}
}

// WithValidation adds an extra check on top of T's own Validate method.
// Failures feed the repair turn like any other validation error.
func (tr *Translator[T]) WithValidation(fn func(T) error) *Translator[T] {
	tr.validate = fn
	return tr
}

// Translate sends the request and decodes the reply into T. One repair
// turn is attempted before giving up.
func (tr *Translator[T]) Translate(ctx context.Context, request string) (T, error) {
	var zero T

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: request},
	}
	reply, err := tr.complete(ctx, messages)
	if err != nil {
		return zero, err
	}

	value, verr := tr.check(reply)
	if verr == nil {
		return value, nil
	}

	repair := fmt.Sprintf(
		"Your reply was not a valid instance of the requested type.\n\nReply:\n%s\n\nProblem: %v\n\nRespond with a single corrected JSON object and nothing else.",
		reply, verr,
	)
	messages = append(messages,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: repair},
	)
	reply, err = tr.complete(ctx, messages)
	if err != nil {
		return zero, fmt.Errorf("repair turn failed: %w", err)
	}

	value, verr = tr.check(reply)
	if verr != nil {
		return zero, fmt.Errorf("model reply still invalid after repair: %w", verr)
	}
	return value, nil
}

// complete runs one chat completion and returns the reply text.
func (tr *Translator[T]) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := tr.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    tr.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// check extracts, decodes, and validates one model reply.
func (tr *Translator[T]) check(reply string) (T, error) {
	var zero T

	raw, err := extractJSON(reply)
	if err != nil {
		return zero, err
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var value T
	if err := dec.Decode(&value); err != nil {
		return zero, fmt.Errorf("decoding model JSON: %w", err)
	}

	if v, ok := any(value).(Validator); ok {
		if err := v.Validate(); err != nil {
			return zero, err
		}
	}
	if tr.validate != nil {
		if err := tr.validate(value); err != nil {
			return zero, err
		}
	}
	return value, nil
}

// extractJSON returns the first balanced top-level JSON object in s.
// Models routinely wrap JSON in markdown fences or prose.
func extractJSON(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("model reply contains no JSON object")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("model reply contains an unterminated JSON object")
}
