package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedrockapp/internal/config"
)

func TestDefine_FunctionAndOutputs(t *testing.T) {
	cfg := config.Default()
	b := Define(cfg)

	fn, ok := b.Functions["invoke-bedrock"]
	require.True(t, ok)
	assert.Equal(t, "provided.al2023", fn.Runtime)
	assert.Equal(t, config.DefaultModelID, fn.Environment["BEDROCK_MODEL_ID"])

	out := b.Outputs()
	assert.Equal(t, "invoke-bedrock", out.Custom["invokeBedrockFunctionName"])
	assert.Equal(t, []string{"invoke-bedrock"}, out.Functions)
	assert.Equal(t, []Grant{{Role: "authenticatedUserIamRole", Function: "invoke-bedrock"}}, b.Grants)
}

func TestPolicyDocument_GrantsBedrockStreaming(t *testing.T) {
	cfg := config.Default()
	cfg.Region = "us-east-1"

	raw, err := Define(cfg).PolicyDocument("invoke-bedrock")
	require.NoError(t, err)

	var doc struct {
		Version   string
		Statement []PolicyStatement
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "2012-10-17", doc.Version)
	require.Len(t, doc.Statement, 1)
	assert.Equal(t, "Allow", doc.Statement[0].Effect)
	assert.ElementsMatch(t, []string{"bedrock:InvokeModel", "bedrock:InvokeModelWithResponseStream"}, doc.Statement[0].Action)
	assert.Equal(t, []string{"arn:aws:bedrock:us-east-1::foundation-model/*"}, doc.Statement[0].Resource)
}

func TestPolicyDocument_AlertsTopic(t *testing.T) {
	cfg := config.Default()
	cfg.AlertsTopicArn = "arn:aws:sns:ap-northeast-1:123456789012:alerts"

	b := Define(cfg)
	require.Len(t, b.Policies["invoke-bedrock"], 2)
	assert.Equal(t, []string{"sns:Publish"}, b.Policies["invoke-bedrock"][1].Action)
}

func TestPolicyDocument_UnknownFunction(t *testing.T) {
	_, err := Define(config.Default()).PolicyDocument("nope")
	assert.Error(t, err)
}
