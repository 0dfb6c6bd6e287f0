package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	values map[string]string
	err    error
	calls  []string
}

func (f *fakeSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(params.Name)
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{Name: params.Name, Value: aws.String(f.values[name])},
	}, nil
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, DefaultModelID, cfg.ModelID)
	assert.Equal(t, DefaultAnthropicVersion, cfg.AnthropicVersion)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.Equal(t, DefaultFunctionName, cfg.FunctionName)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BEDROCK_REGION", "us-east-1")
	t.Setenv("BEDROCK_MODEL_ID", " anthropic.claude-3-haiku-20240307-v1:0 ")
	t.Setenv("BEDROCK_MAX_TOKENS", "256")
	t.Setenv("DATA_TABLE", "Todo-dev")
	t.Setenv("ALERTS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:alerts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.ModelID)
	assert.Equal(t, 256, cfg.MaxTokens)
	assert.Equal(t, "Todo-dev", cfg.DataTable)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:alerts", cfg.AlertsTopicArn)
}

func TestLoad_RejectsNonPositiveMaxTokens(t *testing.T) {
	t.Setenv("BEDROCK_MAX_TOKENS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestResolveParameters_OverridesFromSSM(t *testing.T) {
	f := &fakeSSM{values: map[string]string{
		"/bedrockapp/dev/model-id":      "anthropic.claude-3-5-sonnet-20240620-v1:0",
		"/bedrockapp/dev/system-prompt": "Answer briefly.",
	}}
	cfg := Default()
	cfg.ModelIDParameter = "/bedrockapp/dev/model-id"
	cfg.SystemPromptParameter = "/bedrockapp/dev/system-prompt"

	require.NoError(t, ResolveParameters(context.Background(), f, &cfg))

	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", cfg.ModelID)
	assert.Equal(t, "Answer briefly.", cfg.SystemPrompt)
	assert.Len(t, f.calls, 2)
}

func TestResolveParameters_NothingConfigured(t *testing.T) {
	f := &fakeSSM{}
	cfg := Default()

	require.NoError(t, ResolveParameters(context.Background(), f, &cfg))
	assert.Empty(t, f.calls)
	assert.Equal(t, DefaultModelID, cfg.ModelID)
}

func TestResolveParameters_PropagatesError(t *testing.T) {
	f := &fakeSSM{err: errors.New("access denied")}
	cfg := Default()
	cfg.ModelIDParameter = "/bedrockapp/dev/model-id"

	err := ResolveParameters(context.Background(), f, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/bedrockapp/dev/model-id")
}
