package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"bedrockapp/internal/health"
	"bedrockapp/internal/page"
)

type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

type HealthResponse struct {
	OK        bool              `json:"ok"`
	Service   string            `json:"service"`
	Resources []health.Resource `json:"resources"`
}

type HealthHandler struct {
	checker HealthChecker
	service string
}

func NewHealthHandler(c HealthChecker, service string) *HealthHandler {
	return &HealthHandler{checker: c, service: service}
}

func (h *HealthHandler) Handle(ctx context.Context, _ events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	rep := h.checker.Check(ctx)

	status := http.StatusOK
	if !rep.OK {
		status = http.StatusServiceUnavailable
	}
	return jsonResp(status, HealthResponse{
		OK:        rep.OK,
		Service:   h.service,
		Resources: rep.Resources,
	}), nil
}

// PageHandler serves the placeholder landing page.
func PageHandler(ctx context.Context, _ events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	b, err := page.Render(page.Data{})
	if err != nil {
		return errResp(http.StatusInternalServerError, "render_failed", err), nil
	}
	return htmlResp(http.StatusOK, b), nil
}
