package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

var (
	ErrMalformedChunk = errors.New("malformed stream chunk")
	ErrModelError     = errors.New("model reported an error")
)

// Completion is the aggregated result of one streamed invocation.
type Completion struct {
	Text         string
	StopReason   string
	InputTokens  int
	OutputTokens int
	Chunks       int
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Claude streaming events as delivered inside Bedrock payload parts.
type streamChunk struct {
	Type  string `json:"type"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Message *struct {
		Usage usage `json:"usage"`
	} `json:"message"`
	Usage *usage `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Collect drains the stream and concatenates text deltas. Any failure discards
// the text gathered so far. The stream is closed before returning.
func Collect(ctx context.Context, stream ChunkStream) (*Completion, error) {
	defer stream.Close()

	var (
		b   strings.Builder
		res Completion
	)

	events := stream.Events()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if err := stream.Err(); err != nil {
					return nil, fmt.Errorf("bedrock stream: %w", err)
				}
				res.Text = b.String()
				return &res, nil
			}

			switch v := ev.(type) {
			case *types.ResponseStreamMemberChunk:
				res.Chunks++
				if err := applyChunk(v.Value.Bytes, &b, &res); err != nil {
					return nil, err
				}
			default:
				// unknown union members are not part of the text
			}
		}
	}
}

func applyChunk(raw []byte, b *strings.Builder, res *Completion) error {
	if !utf8.Valid(raw) {
		return fmt.Errorf("%w: invalid utf-8", ErrMalformedChunk)
	}

	var c streamChunk
	if err := json.Unmarshal(raw, &c); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedChunk, err)
	}

	switch c.Type {
	case "content_block_delta":
		if c.Delta != nil && (c.Delta.Type == "" || c.Delta.Type == "text_delta") {
			b.WriteString(c.Delta.Text)
		}
	case "message_start":
		if c.Message != nil {
			res.InputTokens = c.Message.Usage.InputTokens
			res.OutputTokens = c.Message.Usage.OutputTokens
		}
	case "message_delta":
		if c.Delta != nil && c.Delta.StopReason != "" {
			res.StopReason = c.Delta.StopReason
		}
		if c.Usage != nil {
			res.OutputTokens = c.Usage.OutputTokens
		}
	case "error":
		msg := "unknown"
		if c.Error != nil {
			msg = strings.TrimSpace(c.Error.Type + ": " + c.Error.Message)
		}
		return fmt.Errorf("%w: %s", ErrModelError, msg)
	}
	return nil
}

// ErrorKind names the failure class for logs and alerts. Callers only ever see
// the generic envelope.
func ErrorKind(err error) string {
	var (
		ise *types.InternalServerException
		mse *types.ModelStreamErrorException
		thr *types.ThrottlingException
		val *types.ValidationException
		mto *types.ModelTimeoutException
		sua *types.ServiceUnavailableException
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ise):
		return "internal_server"
	case errors.As(err, &mse):
		return "model_stream_error"
	case errors.As(err, &thr):
		return "throttling"
	case errors.As(err, &val):
		return "validation"
	case errors.As(err, &mto):
		return "model_timeout"
	case errors.As(err, &sua):
		return "service_unavailable"
	case errors.Is(err, ErrMalformedChunk):
		return "malformed_chunk"
	case errors.Is(err, ErrModelError):
		return "model_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
