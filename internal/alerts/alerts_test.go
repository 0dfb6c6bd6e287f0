package alerts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestNotifyFailure_Publishes(t *testing.T) {
	f := &fakeSNS{}
	n := NewNotifier(f, "arn:aws:sns:ap-northeast-1:123456789012:alerts", "dev")
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := n.NotifyFailure(context.Background(), Failure{
		Function:  "invoke-bedrock",
		Kind:      "throttling",
		Category:  "storage",
		RequestID: "req-1",
		Err:       errors.New("ThrottlingException: slow down"),
	})
	require.NoError(t, err)
	require.Len(t, f.inputs, 1)

	in := f.inputs[0]
	assert.Equal(t, "arn:aws:sns:ap-northeast-1:123456789012:alerts", aws.ToString(in.TopicArn))
	assert.Equal(t, "invoke-bedrock failed (throttling, dev)", aws.ToString(in.Subject))

	msg := aws.ToString(in.Message)
	assert.Contains(t, msg, "Category: storage")
	assert.Contains(t, msg, "RequestId: req-1")
	assert.Contains(t, msg, "Error: ThrottlingException: slow down")
	assert.Contains(t, msg, "At: 2026-01-02T03:04:05Z")
}

func TestNotifyFailure_DisabledWithoutTopic(t *testing.T) {
	f := &fakeSNS{}
	n := NewNotifier(f, "  ", "dev")

	assert.False(t, n.Enabled())
	require.NoError(t, n.NotifyFailure(context.Background(), Failure{Err: errors.New("x")}))
	assert.Empty(t, f.inputs)

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.NotifyFailure(context.Background(), Failure{}))
}

func TestNotifyFailure_WrapsPublishError(t *testing.T) {
	f := &fakeSNS{err: errors.New("topic not found")}
	n := NewNotifier(f, "arn:aws:sns:ap-northeast-1:123456789012:alerts", "dev")

	err := n.NotifyFailure(context.Background(), Failure{Function: "invoke-bedrock"})
	assert.ErrorContains(t, err, "topic not found")
}

func TestBuildMessage_SubjectLimit(t *testing.T) {
	n := NewNotifier(&fakeSNS{}, "arn", strings.Repeat("s", 200))

	subject, _ := n.buildMessage(Failure{Function: "invoke-bedrock"})
	assert.Len(t, subject, 100)
}
