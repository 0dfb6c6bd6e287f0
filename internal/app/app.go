package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/sirupsen/logrus"

	"bedrockapp/internal/alerts"
	"bedrockapp/internal/config"
	"bedrockapp/internal/handlers"
	"bedrockapp/internal/health"
	"bedrockapp/internal/inference"
	"bedrockapp/internal/logging"
)

// App holds the handlers every entry point is built from.
type App struct {
	Config config.Config
	AWS    aws.Config
	Log    *logrus.Logger

	Invoke *handlers.InvokeHandler
	Health *handlers.HealthHandler
}

// New loads configuration and builds the AWS clients once per cold start.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if err := config.ResolveParameters(ctx, ssm.NewFromConfig(awsCfg), &cfg); err != nil {
		return nil, err
	}

	br := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		o.Region = cfg.Region
	})
	model := inference.Model{
		ID:               cfg.ModelID,
		AnthropicVersion: cfg.AnthropicVersion,
		MaxTokens:        cfg.MaxTokens,
		SystemPrompt:     cfg.SystemPrompt,
	}
	gen := inference.NewGenerator(inference.NewBedrock(br, model), log)
	notifier := alerts.NewNotifier(sns.NewFromConfig(awsCfg), cfg.AlertsTopicArn, cfg.Stage)

	checker := health.NewChecker(
		dynamodb.NewFromConfig(awsCfg),
		s3.NewFromConfig(awsCfg),
		cfg.DataTable,
		cfg.StorageBucket,
	)

	log.WithFields(logrus.Fields{
		"model_id":   cfg.ModelID,
		"region":     cfg.Region,
		"max_tokens": cfg.MaxTokens,
		"alerts":     notifier.Enabled(),
	}).Info("app initialized")

	return &App{
		Config: cfg,
		AWS:    awsCfg,
		Log:    log,
		Invoke: handlers.NewInvokeHandler(gen, notifier, log, cfg.FunctionName),
		Health: handlers.NewHealthHandler(checker, cfg.ServiceName),
	}, nil
}
