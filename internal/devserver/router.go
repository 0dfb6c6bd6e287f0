package devserver

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bedrockapp/internal/handlers"
	"bedrockapp/internal/logging"
)

type InvokeFunc func(ctx context.Context, ev handlers.InvokeEvent) (events.APIGatewayV2HTTPResponse, error)

type LambdaHTTPFunc func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// NewRouter mirrors the deployed functions on a local gin engine.
func NewRouter(invoke InvokeFunc, health LambdaHTTPFunc, page LambdaHTTPFunc, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(requestLogger(log))

	r.GET("/", lambdaRoute(page))
	r.GET("/health", lambdaRoute(health))
	r.POST("/invoke", func(c *gin.Context) {
		var ev handlers.InvokeEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, handlers.ErrorBody{Error: "invalid_json", Details: err.Error()})
			return
		}
		resp, err := invoke(c.Request.Context(), ev)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handlers.ErrorBody{Error: handlers.GenericErrorMessage, Details: err.Error()})
			return
		}
		writeLambdaResponse(c, resp)
	})

	return r
}

func lambdaRoute(fn LambdaHTTPFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := events.APIGatewayV2HTTPRequest{
			RawPath:        c.Request.URL.Path,
			RawQueryString: c.Request.URL.RawQuery,
			Headers:        map[string]string{},
		}
		for k := range c.Request.Header {
			req.Headers[k] = c.GetHeader(k)
		}
		req.RequestContext.HTTP.Method = c.Request.Method
		req.RequestContext.HTTP.Path = c.Request.URL.Path
		req.RequestContext.RequestID = c.GetString("request_id")

		resp, err := fn(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		writeLambdaResponse(c, resp)
	}
}

func writeLambdaResponse(c *gin.Context, resp events.APIGatewayV2HTTPResponse) {
	contentType := "application/json"
	for k, v := range resp.Headers {
		if http.CanonicalHeaderKey(k) == "Content-Type" {
			contentType = v
			continue
		}
		c.Header(k, v)
	}
	c.Data(resp.StatusCode, contentType, []byte(resp.Body))
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("x-request-id", id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()

		logging.FromContext(c.Request.Context(), log).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
