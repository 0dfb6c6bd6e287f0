package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Failure describes one failed invocation.
type Failure struct {
	Function  string
	Kind      string
	Category  string
	RequestID string
	Err       error
}

// Notifier publishes failure summaries to an SNS topic. A Notifier with an
// empty topic does nothing.
type Notifier struct {
	sns      Publisher
	topicArn string
	stage    string
	now      func() time.Time
}

func NewNotifier(p Publisher, topicArn, stage string) *Notifier {
	return &Notifier{
		sns:      p,
		topicArn: strings.TrimSpace(topicArn),
		stage:    stage,
		now:      time.Now,
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.sns != nil && n.topicArn != ""
}

func (n *Notifier) NotifyFailure(ctx context.Context, f Failure) error {
	if !n.Enabled() {
		return nil
	}

	subject, message := n.buildMessage(f)
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns Publish: %w", err)
	}
	return nil
}

func (n *Notifier) buildMessage(f Failure) (subject string, body string) {
	kind := f.Kind
	if kind == "" {
		kind = "unknown"
	}
	subject = truncate(fmt.Sprintf("%s failed (%s, %s)", f.Function, kind, n.stage), 100)

	lines := []string{
		"Inference invocation failed",
		"",
		fmt.Sprintf("Function: %s", f.Function),
		fmt.Sprintf("Stage: %s", n.stage),
		fmt.Sprintf("Kind: %s", kind),
	}
	if f.Category != "" {
		lines = append(lines, fmt.Sprintf("Category: %s", f.Category))
	}
	if f.RequestID != "" {
		lines = append(lines, fmt.Sprintf("RequestId: %s", f.RequestID))
	}
	if f.Err != nil {
		lines = append(lines, fmt.Sprintf("Error: %s", f.Err.Error()))
	}
	lines = append(lines, "", fmt.Sprintf("At: %s", n.now().UTC().Format(time.RFC3339)))

	return subject, strings.Join(lines, "\n")
}

// SNS subjects are limited to 100 characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
