package cutting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"garment/internal/ledger"
	"garment/internal/locking"
	"garment/pkg/metadata"
	"garment/pkg/models"
)

type MockCuttingService struct {
	mock.Mock
}

func (m *MockCuttingService) StartCutting(ctx context.Context, req models.CuttingBeforeRequest) (*BeforeResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BeforeResult), args.Error(1)
}

func (m *MockCuttingService) CompleteCutting(ctx context.Context, id int, req models.CuttingAfterRequest) (*AfterResult, error) {
	args := m.Called(id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AfterResult), args.Error(1)
}

func (m *MockCuttingService) GetBatches(ctx context.Context, filter BatchFilter) ([]models.CuttingBatch, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CuttingBatch), args.Error(1)
}

func (m *MockCuttingService) GetBatch(ctx context.Context, id int) (*models.CuttingBatch, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CuttingBatch), args.Error(1)
}

func setupRouter(h *CuttingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/cutting/before", h.StartCutting)
	router.PUT("/cutting/:id/after", h.CompleteCutting)
	router.GET("/cutting", h.GetBatches)
	router.GET("/cutting/:id", h.GetBatch)
	return router
}

func beforePayload() map[string]interface{} {
	return map[string]interface{}{
		"lot_number":  "LOT-1",
		"fabric_name": "Cotton",
		"sizes":       []string{"S", "M"},
		"roles": []map[string]interface{}{
			{"role_number": 1, "color": "Red", "planned_weight": "40"},
		},
	}
}

func TestStartCutting(t *testing.T) {
	mockService := new(MockCuttingService)
	router := setupRouter(NewHandler(mockService, nil))

	tests := []struct {
		name           string
		payload        map[string]interface{}
		setupMock      func()
		expectedStatus int
	}{
		{
			name:    "reserved",
			payload: beforePayload(),
			setupMock: func() {
				mockService.On("StartCutting", mock.Anything).Return(&BeforeResult{
					Batch: &models.CuttingBatch{ID: 1, LotNumber: "LOT-1", Status: metadata.BatchStatusReserved},
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "no sizes",
			payload: func() map[string]interface{} {
				p := beforePayload()
				p["sizes"] = []string{}
				return p
			}(),
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "insufficient stock",
			payload: beforePayload(),
			setupMock: func() {
				mockService.On("StartCutting", mock.Anything).Return(nil, &ledger.InsufficientStockError{
					FabricName: "Cotton", Color: "Red", Available: decimal.NewFromInt(10), Requested: decimal.NewFromInt(40),
				})
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:    "unknown stock record",
			payload: beforePayload(),
			setupMock: func() {
				mockService.On("StartCutting", mock.Anything).Return(nil, &ledger.NotFoundError{Resource: "stock record", Key: "Cotton/Red"})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:    "stock busy",
			payload: beforePayload(),
			setupMock: func() {
				mockService.On("StartCutting", mock.Anything).Return(nil, fmt.Errorf("failed to lock stock records: %w", locking.ErrNotObtained))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService.ExpectedCalls = nil
			tt.setupMock()

			body, _ := json.Marshal(tt.payload)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/cutting/before", bytes.NewBuffer(body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCompleteCutting(t *testing.T) {
	mockService := new(MockCuttingService)
	router := setupRouter(NewHandler(mockService, nil))
	payload := map[string]interface{}{
		"roles": []map[string]interface{}{{"role_number": 1, "layers_cut": "15"}},
	}

	tests := []struct {
		name           string
		path           string
		setupMock      func()
		expectedStatus int
	}{
		{
			name: "completed with shortfall",
			path: "/cutting/7/after",
			setupMock: func() {
				mockService.On("CompleteCutting", 7, mock.Anything).Return(&AfterResult{
					Batch: &models.CuttingBatch{ID: 7, Status: metadata.BatchStatusCompleted, AfterComplete: true},
					Reconciliation: &ledger.Reconciliation{
						Adjustments: []ledger.RoleAdjustment{},
						Shortfalls: []ledger.Shortfall{
							{RoleNumber: 1, FabricName: "Cotton", Color: "Red", Requested: decimal.NewFromInt(5), Missing: decimal.NewFromInt(5)},
						},
					},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "already reconciled",
			path: "/cutting/7/after",
			setupMock: func() {
				mockService.On("CompleteCutting", 7, mock.Anything).Return(nil, ledger.ErrAlreadyReconciled)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "missing role",
			path: "/cutting/7/after",
			setupMock: func() {
				mockService.On("CompleteCutting", 7, mock.Anything).Return(nil, &ledger.ValidationError{Property: "roles", Message: "missing cut result for role 2"})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid id",
			path:           "/cutting/abc/after",
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unexpected error",
			path: "/cutting/7/after",
			setupMock: func() {
				mockService.On("CompleteCutting", 7, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService.ExpectedCalls = nil
			tt.setupMock()

			body, _ := json.Marshal(payload)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("PUT", tt.path, bytes.NewBuffer(body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCompleteCutting_ShortfallsInBody(t *testing.T) {
	mockService := new(MockCuttingService)
	router := setupRouter(NewHandler(mockService, nil))
	mockService.On("CompleteCutting", 3, mock.MatchedBy(func(req models.CuttingAfterRequest) bool {
		return len(req.Roles) == 1 && req.Roles[0].LayersCut.Equal(decimal.NewFromInt(15))
	})).Return(&AfterResult{
		Batch: &models.CuttingBatch{ID: 3},
		Reconciliation: &ledger.Reconciliation{
			Adjustments: []ledger.RoleAdjustment{},
			Shortfalls:  []ledger.Shortfall{{RoleNumber: 1, Missing: decimal.NewFromInt(5)}},
		},
	}, nil)

	body := `{"roles":[{"role_number":1,"layers_cut":15}]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PUT", "/cutting/3/after", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Batch      models.CuttingBatch `json:"batch"`
		Shortfalls []struct {
			RoleNumber int    `json:"role_number"`
			Missing    string `json:"missing"`
		} `json:"shortfalls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Batch.ID)
	require.Len(t, response.Shortfalls, 1)
	assert.Equal(t, "5", response.Shortfalls[0].Missing)
}

func TestGetBatches(t *testing.T) {
	mockService := new(MockCuttingService)
	router := setupRouter(NewHandler(mockService, nil))
	mockService.On("GetBatches", BatchFilter{Status: "reserved"}).Return([]models.CuttingBatch{{ID: 1}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/cutting?status=reserved", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetBatch_NotFound(t *testing.T) {
	mockService := new(MockCuttingService)
	router := setupRouter(NewHandler(mockService, nil))
	mockService.On("GetBatch", 99).Return(nil, &ledger.NotFoundError{Resource: "cutting batch", Key: "99"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/cutting/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckRoleNumbers(t *testing.T) {
	assert.NoError(t, checkRoleNumbers([]models.CuttingRoleRequest{{RoleNumber: 1}, {RoleNumber: 2}}))

	err := checkRoleNumbers([]models.CuttingRoleRequest{{RoleNumber: 1}, {RoleNumber: 1}})
	var validation *ledger.ValidationError
	assert.True(t, errors.As(err, &validation))
}
