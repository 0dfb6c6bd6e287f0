package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"bedrockapp/internal/handlers"
)

func main() {
	lambda.Start(handlers.PageHandler)
}
