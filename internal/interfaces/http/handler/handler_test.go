package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"

	apptrade "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newEngine returns an engine with the request logger installed so error bodies carry a request ID
func newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinMiddleware(zap.NewNop()))
	return engine
}

func perform(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(logger.RequestIDHeader, "req-test")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

type MockOrderCommands struct {
	mock.Mock
}

func (m *MockOrderCommands) order(args mock.Arguments) (*apptrade.OrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderCommands) Create(ctx context.Context, kind trade.Kind, req apptrade.CreateOrderRequest) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, kind, req))
}

func (m *MockOrderCommands) GetByID(ctx context.Context, kind trade.Kind, id uuid.UUID) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, kind, id))
}

func (m *MockOrderCommands) List(ctx context.Context, kind trade.Kind, req apptrade.ListOrdersRequest) (shared.Paginated[apptrade.OrderResponse], error) {
	args := m.Called(ctx, kind, req)
	return args.Get(0).(shared.Paginated[apptrade.OrderResponse]), args.Error(1)
}

func (m *MockOrderCommands) Update(ctx context.Context, kind trade.Kind, id uuid.UUID, req apptrade.UpdateOrderRequest) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, kind, id, req))
}

func (m *MockOrderCommands) AddLine(ctx context.Context, kind trade.Kind, id uuid.UUID, req apptrade.AddLineRequest) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, kind, id, req))
}

func (m *MockOrderCommands) UpdateLine(ctx context.Context, kind trade.Kind, id, lineID uuid.UUID, req apptrade.UpdateLineRequest) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, kind, id, lineID, req))
}

func (m *MockOrderCommands) RemoveLine(ctx context.Context, kind trade.Kind, id, lineID uuid.UUID) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, kind, id, lineID))
}

func (m *MockOrderCommands) AssignTechnician(ctx context.Context, id, lineID uuid.UUID, req apptrade.AssignTechnicianRequest) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, id, lineID, req))
}

func (m *MockOrderCommands) MarkPaid(ctx context.Context, kind trade.Kind, id uuid.UUID, req apptrade.MarkPaidRequest) (*apptrade.OrderResponse, error) {
	return m.order(m.Called(ctx, kind, id, req))
}

func (m *MockOrderCommands) Delete(ctx context.Context, kind trade.Kind, id uuid.UUID) error {
	return m.Called(ctx, kind, id).Error(0)
}

type MockTransitionCommands struct {
	mock.Mock
}

func (m *MockTransitionCommands) Submit(ctx context.Context, kind trade.Kind, id uuid.UUID, t trade.Transition) (*apptrade.TransitionResult, error) {
	args := m.Called(ctx, kind, id, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.TransitionResult), args.Error(1)
}

func (m *MockTransitionCommands) Preview(ctx context.Context, kind trade.Kind, id uuid.UUID, t trade.Transition) (*apptrade.TransitionResult, error) {
	args := m.Called(ctx, kind, id, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.TransitionResult), args.Error(1)
}

func orderPath(kind trade.Kind, id uuid.UUID, suffix string) string {
	return fmt.Sprintf("/orders/%s/%s%s", kind, id, suffix)
}

// errorCode extracts error.code from a failed response
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

var errBoom = errors.New("pq: connection reset by peer")
