// Package inferencetest provides in-memory streams for exercising the collector
// without calling Bedrock.
package inferencetest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"bedrockapp/internal/inference"
)

type Stream struct {
	ch     chan types.ResponseStream
	err    error
	Closed bool
}

// NewStream returns a closed-channel stream that yields events and then err.
func NewStream(err error, events ...types.ResponseStream) *Stream {
	ch := make(chan types.ResponseStream, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return &Stream{ch: ch, err: err}
}

// NewOpenStream never closes its channel; used to test cancellation.
func NewOpenStream() *Stream {
	return &Stream{ch: make(chan types.ResponseStream)}
}

func (s *Stream) Events() <-chan types.ResponseStream { return s.ch }
func (s *Stream) Err() error                          { return s.err }
func (s *Stream) Close() error {
	s.Closed = true
	return nil
}

// Chunk wraps raw bytes as a payload part.
func Chunk(raw []byte) types.ResponseStream {
	return &types.ResponseStreamMemberChunk{Value: types.PayloadPart{Bytes: raw}}
}

// TextDelta builds a content_block_delta chunk carrying text.
func TextDelta(text string) types.ResponseStream {
	b, _ := json.Marshal(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]any{"type": "text_delta", "text": text},
	})
	return Chunk(b)
}

// Event builds an arbitrary typed chunk, e.g. Event("message_stop").
func Event(typ string) types.ResponseStream {
	return Chunk([]byte(fmt.Sprintf(`{"type":%q}`, typ)))
}

// TextStream is the common happy path: message_start, deltas, message_stop.
func TextStream(parts ...string) *Stream {
	events := []types.ResponseStream{
		Chunk([]byte(`{"type":"message_start","message":{"usage":{"input_tokens":12,"output_tokens":1}}}`)),
		Chunk([]byte(`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)),
	}
	for _, p := range parts {
		events = append(events, TextDelta(p))
	}
	events = append(events,
		Event("content_block_stop"),
		Chunk([]byte(`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":7}}`)),
		Event("message_stop"),
	)
	return NewStream(nil, events...)
}

// Opener returns a fixed stream or error and records the prompts it saw.
type Opener struct {
	Stream  inference.ChunkStream
	Err     error
	Prompts []string
}

func (o *Opener) Open(ctx context.Context, prompt string) (inference.ChunkStream, error) {
	o.Prompts = append(o.Prompts, prompt)
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Stream, nil
}
