package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	type path struct {
		Kind string `uri:"kind" validate:"required,order_kind"`
	}
	assert.NoError(t, v.Struct(path{Kind: "supplier"}))

	err := v.Struct(path{Kind: "sales"})
	require.Error(t, err)
	details := ValidationDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "kind", details[0].Field)
	assert.Equal(t, "Must be one of: product service supplier", details[0].Message)
}

func TestValidationDetails(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	type body struct {
		BranchCode  string `json:"branch_code" validate:"required,max=20"`
		PaymentType string `json:"payment_type" validate:"omitempty,oneof=cash credit"`
		Notes       string `json:"notes" validate:"max=5"`
	}
	details := ValidationDetails(v.Struct(body{PaymentType: "barter", Notes: "too long"}))
	require.Len(t, details, 3)
	assert.Equal(t, "branch_code", details[0].Field)
	assert.Equal(t, "This field is required", details[0].Message)
	assert.Equal(t, "Must be one of: cash credit", details[1].Message)
	assert.Equal(t, "Must be at most 5 characters", details[2].Message)

	plain := ValidationDetails(assert.AnError)
	require.Len(t, plain, 1)
	assert.Empty(t, plain[0].Field)
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://erp.example.com"}
	engine := gin.New()
	engine.Use(CORSWithConfig(cfg))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://erp.example.com")
	w := serve(engine, req)
	assert.Equal(t, "https://erp.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(engine, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://erp.example.com")
	w = serve(engine, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestBodyLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(BodyLimit(16))
	engine.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
}

func TestTimeout(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(20 * time.Millisecond))
	engine.GET("/slow", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
			c.Status(http.StatusGatewayTimeout)
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	})
	assert.Equal(t, http.StatusGatewayTimeout, serve(engine, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)

	unbounded := gin.New()
	unbounded.Use(Timeout(0))
	unbounded.GET("/x", func(c *gin.Context) {
		_, has := c.Request.Context().Deadline()
		assert.False(t, has)
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(unbounded, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	engine := gin.New()
	engine.Use(logger.GinMiddleware(zap.NewNop()))
	engine.Use(Tracing("procurement-test", true)...)
	engine.POST("/orders/:kind/:id/transitions/:name", func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodPost, "/orders/supplier/0b5c/transitions/ship", nil)
	req.Header.Set(logger.RequestIDHeader, "req-42")
	serve(engine, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "req-42", attrs["request_id"].AsString())
	assert.Equal(t, "supplier", attrs["order.kind"].AsString())
	assert.Equal(t, "0b5c", attrs["order.id"].AsString())
}

func TestTracing_Disabled(t *testing.T) {
	engine := gin.New()
	engine.Use(Tracing("procurement-test", false)...)
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	mw, err := HTTPMetrics(mp.Meter("test"))
	require.NoError(t, err)
	engine := gin.New()
	engine.Use(mw)
	engine.GET("/orders/:kind/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(engine, httptest.NewRequest(http.MethodGet, "/orders/product/1", nil))
	serve(engine, httptest.NewRequest(http.MethodGet, "/orders/service/2", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total *metricdata.Sum[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "http_server_request_total" {
				sum := m.Data.(metricdata.Sum[int64])
				total = &sum
			}
		}
	}
	require.NotNil(t, total)
	require.Len(t, total.DataPoints, 1, "route pattern keeps one series")
	dp := total.DataPoints[0]
	assert.Equal(t, int64(2), dp.Value)
	route, _ := dp.Attributes.Value("route")
	assert.Equal(t, "/orders/:kind/:id", route.AsString())
	group, _ := dp.Attributes.Value("status_group")
	assert.Equal(t, "4xx", group.AsString())

	passthrough, err := HTTPMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, passthrough)
}

func TestStatusGroup(t *testing.T) {
	assert.Equal(t, "2xx", StatusGroup(204))
	assert.Equal(t, "5xx", StatusGroup(504))
	assert.Equal(t, "unknown", StatusGroup(42))
}
