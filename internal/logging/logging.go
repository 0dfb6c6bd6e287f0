package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

// New returns a JSON logger suitable for CloudWatch. Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// FromContext tags the entry with the Lambda request id when one is present.
func FromContext(ctx context.Context, l logrus.FieldLogger) *logrus.Entry {
	e := l.WithFields(logrus.Fields{})
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		e = e.WithField("aws_request_id", lc.AwsRequestID)
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		e = e.WithField("request_id", id)
	}
	return e
}

type requestIDKey struct{}

// WithRequestID stores a request id for non-Lambda callers such as the dev server.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
