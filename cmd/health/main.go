package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"bedrockapp/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	lambda.Start(a.Health.Handle)
}
