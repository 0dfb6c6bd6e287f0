package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// Model selects the hosted model and the fixed parts of the request envelope.
type Model struct {
	ID               string
	AnthropicVersion string
	MaxTokens        int
	SystemPrompt     string
}

type BedrockClient interface {
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

// ChunkStream is the subset of the SDK event stream the collector reads from.
type ChunkStream interface {
	Events() <-chan types.ResponseStream
	Err() error
	Close() error
}

type Opener interface {
	Open(ctx context.Context, prompt string) (ChunkStream, error)
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type message struct {
	Role    string        `json:"role"`
	Content []textContent `json:"content"`
}

type requestBody struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Messages         []message `json:"messages"`
}

// BuildRequestBody renders the Anthropic messages payload Claude expects on Bedrock:
// { "anthropic_version": ..., "max_tokens": ..., "messages": [...] }
func BuildRequestBody(m Model, prompt string) ([]byte, error) {
	body := requestBody{
		AnthropicVersion: m.AnthropicVersion,
		MaxTokens:        m.MaxTokens,
		System:           strings.TrimSpace(m.SystemPrompt),
		Messages: []message{
			{
				Role:    "user",
				Content: []textContent{{Type: "text", Text: prompt}},
			},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return b, nil
}

type Bedrock struct {
	client BedrockClient
	model  Model
}

func NewBedrock(c BedrockClient, m Model) *Bedrock {
	return &Bedrock{client: c, model: m}
}

func (b *Bedrock) Model() Model { return b.model }

// Open issues one InvokeModelWithResponseStream call. A response without a
// stream yields a nil ChunkStream and no error.
func (b *Bedrock) Open(ctx context.Context, prompt string) (ChunkStream, error) {
	body, err := BuildRequestBody(b.model, prompt)
	if err != nil {
		return nil, err
	}

	out, err := b.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(b.model.ID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock InvokeModelWithResponseStream: %w", err)
	}

	if out == nil {
		return nil, nil
	}
	// Avoid handing back a typed nil inside the interface.
	if s := out.GetStream(); s != nil {
		return s, nil
	}
	return nil, nil
}
