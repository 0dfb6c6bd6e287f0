package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"

	"bedrockapp/internal/alerts"
	"bedrockapp/internal/inference"
	"bedrockapp/internal/logging"
)

// GenericErrorMessage is the fixed error text returned to callers.
const GenericErrorMessage = "an error occurred while generating the response"

var errPromptRequired = errors.New("prompt is required")

// InvokeEvent is the direct-invocation payload.
type InvokeEvent struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
}

type InvokeResult struct {
	Response string `json:"response"`
	Category string `json:"category"`
}

type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*inference.Completion, error)
}

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, f alerts.Failure) error
}

type InvokeHandler struct {
	gen      TextGenerator
	notifier FailureNotifier
	log      logrus.FieldLogger
	function string
}

func NewInvokeHandler(gen TextGenerator, notifier FailureNotifier, log logrus.FieldLogger, function string) *InvokeHandler {
	return &InvokeHandler{
		gen:      gen,
		notifier: notifier,
		log:      log,
		function: function,
	}
}

// Handle forwards the prompt to the model. Failures are returned as a 500
// envelope, never as a Go error.
func (h *InvokeHandler) Handle(ctx context.Context, ev InvokeEvent) (events.APIGatewayV2HTTPResponse, error) {
	log := logging.FromContext(ctx, h.log).WithField("category", ev.Category)

	if strings.TrimSpace(ev.Prompt) == "" {
		return h.fail(ctx, log, ev, errPromptRequired), nil
	}

	res, err := h.gen.Generate(ctx, ev.Prompt)
	if err != nil {
		return h.fail(ctx, log, ev, err), nil
	}

	log.WithField("response_len", len(res.Text)).Info("generated response")
	return jsonResp(http.StatusOK, InvokeResult{
		Response: res.Text,
		Category: ev.Category,
	}), nil
}

// HandleHTTP serves the same operation behind an HTTP API with a JWT authorizer.
func (h *InvokeHandler) HandleHTTP(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	sub, err := userSub(req)
	if err != nil {
		return errResp(http.StatusUnauthorized, "unauthorized", err), nil
	}

	body := req.Body
	if req.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(http.StatusBadRequest, "invalid_body", err), nil
		}
		body = string(raw)
	}

	var ev InvokeEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return errResp(http.StatusBadRequest, "invalid_json", err), nil
	}

	ctx = logging.WithRequestID(ctx, req.RequestContext.RequestID)
	logging.FromContext(ctx, h.log).WithField("user_sub", sub).Debug("http invoke")
	return h.Handle(ctx, ev)
}

func (h *InvokeHandler) fail(ctx context.Context, log *logrus.Entry, ev InvokeEvent, err error) events.APIGatewayV2HTTPResponse {
	kind := inference.ErrorKind(err)
	if errors.Is(err, errPromptRequired) {
		kind = "bad_request"
	}
	log.WithError(err).WithField("error_kind", kind).Error("error generating response")

	if h.notifier != nil {
		f := alerts.Failure{
			Function: h.function,
			Kind:     kind,
			Category: ev.Category,
			Err:      err,
		}
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			f.RequestID = lc.AwsRequestID
		}
		if nerr := h.notifier.NotifyFailure(ctx, f); nerr != nil {
			log.WithError(nerr).Warn("failure alert not sent")
		}
	}

	return errResp(http.StatusInternalServerError, GenericErrorMessage, err)
}
