package inference

import (
	"context"

	"github.com/sirupsen/logrus"

	"bedrockapp/internal/logging"
)

type Generator struct {
	opener Opener
	log    logrus.FieldLogger
}

func NewGenerator(o Opener, log logrus.FieldLogger) *Generator {
	return &Generator{opener: o, log: log}
}

// Generate sends prompt to the model and returns the concatenated text.
func (g *Generator) Generate(ctx context.Context, prompt string) (*Completion, error) {
	stream, err := g.opener.Open(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return &Completion{}, nil
	}

	res, err := Collect(ctx, stream)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx, g.log).WithFields(logrus.Fields{
		"chunks":        res.Chunks,
		"stop_reason":   res.StopReason,
		"input_tokens":  res.InputTokens,
		"output_tokens": res.OutputTokens,
	}).Debug("bedrock stream complete")
	return res, nil
}
