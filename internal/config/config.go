package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultRegion           = "ap-northeast-1"
	DefaultModelID          = "anthropic.claude-sonnet-4-20250514-v1:0"
	DefaultAnthropicVersion = "bedrock-2023-05-31"
	DefaultMaxTokens        = 1000
	DefaultFunctionName     = "invoke-bedrock"
)

// Config is read from the environment. Keys match the Lambda env var names.
type Config struct {
	Region           string `mapstructure:"bedrock_region"`
	ModelID          string `mapstructure:"bedrock_model_id"`
	AnthropicVersion string `mapstructure:"bedrock_anthropic_version"`
	MaxTokens        int    `mapstructure:"bedrock_max_tokens"`
	SystemPrompt     string `mapstructure:"bedrock_system_prompt"`

	// SSM parameter names; when set they override ModelID / SystemPrompt at cold start.
	ModelIDParameter      string `mapstructure:"bedrock_model_id_parameter"`
	SystemPromptParameter string `mapstructure:"bedrock_system_prompt_parameter"`

	FunctionName   string `mapstructure:"function_name"`
	ServiceName    string `mapstructure:"service_name"`
	Stage          string `mapstructure:"stage"`
	DataTable      string `mapstructure:"data_table"`
	StorageBucket  string `mapstructure:"storage_bucket"`
	AlertsTopicArn string `mapstructure:"alerts_topic_arn"`
	LogLevel       string `mapstructure:"log_level"`
	DevAddr        string `mapstructure:"dev_addr"`
}

func Default() Config {
	return Config{
		Region:           DefaultRegion,
		ModelID:          DefaultModelID,
		AnthropicVersion: DefaultAnthropicVersion,
		MaxTokens:        DefaultMaxTokens,
		FunctionName:     DefaultFunctionName,
		ServiceName:      "bedrockapp",
		Stage:            "dev",
		LogLevel:         "info",
		DevAddr:          ":8080",
	}
}

// Load reads configuration from environment variables on top of Default.
func Load() (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("bedrock_region", def.Region)
	v.SetDefault("bedrock_model_id", def.ModelID)
	v.SetDefault("bedrock_anthropic_version", def.AnthropicVersion)
	v.SetDefault("bedrock_max_tokens", def.MaxTokens)
	v.SetDefault("bedrock_system_prompt", "")
	v.SetDefault("bedrock_model_id_parameter", "")
	v.SetDefault("bedrock_system_prompt_parameter", "")
	v.SetDefault("function_name", def.FunctionName)
	v.SetDefault("service_name", def.ServiceName)
	v.SetDefault("stage", def.Stage)
	v.SetDefault("data_table", "")
	v.SetDefault("storage_bucket", "")
	v.SetDefault("alerts_topic_arn", "")
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("dev_addr", def.DevAddr)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files for local binaries. Missing files are fine.
func LoadDotEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func (c *Config) normalize() {
	c.Region = strings.TrimSpace(c.Region)
	c.ModelID = strings.TrimSpace(c.ModelID)
	c.AnthropicVersion = strings.TrimSpace(c.AnthropicVersion)
	c.ModelIDParameter = strings.TrimSpace(c.ModelIDParameter)
	c.SystemPromptParameter = strings.TrimSpace(c.SystemPromptParameter)
	c.DataTable = strings.TrimSpace(c.DataTable)
	c.StorageBucket = strings.TrimSpace(c.StorageBucket)
	c.AlertsTopicArn = strings.TrimSpace(c.AlertsTopicArn)
	c.Stage = strings.TrimSpace(c.Stage)
}

func (c Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("missing BEDROCK_REGION")
	}
	if c.ModelID == "" && c.ModelIDParameter == "" {
		return fmt.Errorf("missing BEDROCK_MODEL_ID")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("BEDROCK_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	return nil
}

type ParameterClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveParameters replaces ModelID and SystemPrompt with the values stored in
// SSM Parameter Store when their parameter names are configured.
func ResolveParameters(ctx context.Context, c ParameterClient, cfg *Config) error {
	if cfg.ModelIDParameter != "" {
		v, err := getParameter(ctx, c, cfg.ModelIDParameter)
		if err != nil {
			return err
		}
		if v != "" {
			cfg.ModelID = v
		}
	}
	if cfg.SystemPromptParameter != "" {
		v, err := getParameter(ctx, c, cfg.SystemPromptParameter)
		if err != nil {
			return err
		}
		cfg.SystemPrompt = v
	}
	if cfg.ModelID == "" {
		return fmt.Errorf("model id is empty after resolving %s", cfg.ModelIDParameter)
	}
	return nil
}

func getParameter(ctx context.Context, c ParameterClient, name string) (string, error) {
	out, err := c.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm GetParameter %s: %w", name, err)
	}
	if out.Parameter == nil {
		return "", nil
	}
	return strings.TrimSpace(aws.ToString(out.Parameter.Value)), nil
}
