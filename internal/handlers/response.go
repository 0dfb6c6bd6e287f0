package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

func userSub(req events.APIGatewayV2HTTPRequest) (string, error) {
	// For HTTP API JWT authorizer, claims are in:
	// req.RequestContext.Authorizer.JWT.Claims
	if req.RequestContext.Authorizer == nil || req.RequestContext.Authorizer.JWT == nil ||
		req.RequestContext.Authorizer.JWT.Claims == nil {
		return "", errors.New("missing authorizer claims")
	}
	sub := strings.TrimSpace(req.RequestContext.Authorizer.JWT.Claims["sub"])
	if sub == "" {
		return "", fmt.Errorf("missing sub")
	}
	return sub, nil
}

func jsonResp(status int, v any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type":                "application/json",
			"access-control-allow-origin": "*",
		},
		Body: string(b),
	}
}

func errResp(status int, msg string, err error) events.APIGatewayV2HTTPResponse {
	details := "unknown error"
	if err != nil && err.Error() != "" {
		details = err.Error()
	}
	return jsonResp(status, ErrorBody{Error: msg, Details: details})
}

func htmlResp(status int, body []byte) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type": "text/html; charset=utf-8",
		},
		Body: string(body),
	}
}
