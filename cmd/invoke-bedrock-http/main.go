package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"bedrockapp/internal/app"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	lambda.Start(a.Invoke.HandleHTTP)
}
