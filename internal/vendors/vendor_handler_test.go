package vendors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"garment/internal/ledger"
	"garment/pkg/models"
)

type MockVendorService struct {
	mock.Mock
}

func (m *MockVendorService) CreateVendor(ctx context.Context, req models.VendorRequest) (*models.Vendor, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorService) GetVendors(ctx context.Context) ([]models.Vendor, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vendor), args.Error(1)
}

func (m *MockVendorService) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorService) UpdateVendor(ctx context.Context, id int, req models.PatchVendorRequest) (*models.Vendor, error) {
	args := m.Called(id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func setupRouter(h *VendorHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/vendors", h.CreateVendor)
	router.GET("/vendors", h.GetVendors)
	router.GET("/vendors/:id", h.GetVendor)
	router.PATCH("/vendors/:id", h.UpdateVendor)
	return router
}

func TestCreateVendor(t *testing.T) {
	mockService := new(MockVendorService)
	router := setupRouter(NewHandler(mockService, nil))

	validPayload := map[string]interface{}{
		"name":        "Textile Mills",
		"bill_number": "B-17",
		"fabrics": []map[string]interface{}{
			{"fabric_name": "Cotton", "color": "Red", "weight": "12.5"},
		},
	}

	tests := []struct {
		name           string
		payload        interface{}
		setupMock      func()
		expectedStatus int
	}{
		{
			name:    "successful delivery",
			payload: validPayload,
			setupMock: func() {
				mockService.On("CreateVendor", mock.MatchedBy(func(req models.VendorRequest) bool {
					return req.Name == "Textile Mills" &&
						len(req.Fabrics) == 1 &&
						req.Fabrics[0].Weight.Equal(decimal.RequireFromString("12.5"))
				})).Return(&models.Vendor{ID: 1, Name: "Textile Mills"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "no fabric lines",
			payload:        map[string]interface{}{"name": "Textile Mills", "fabrics": []interface{}{}},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing color",
			payload: map[string]interface{}{
				"name":    "Textile Mills",
				"fabrics": []map[string]interface{}{{"fabric_name": "Cotton", "weight": "1"}},
			},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "non positive weight rejected by ledger",
			payload: validPayload,
			setupMock: func() {
				mockService.On("CreateVendor", mock.Anything).
					Return(nil, &ledger.ValidationError{Property: "fabrics[0].IntakeInput.Weight", Message: "failed on the 'gt' rule"})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "service error",
			payload: validPayload,
			setupMock: func() {
				mockService.On("CreateVendor", mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService.ExpectedCalls = nil
			tt.setupMock()

			body, _ := json.Marshal(tt.payload)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/vendors", bytes.NewBuffer(body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetVendor(t *testing.T) {
	mockService := new(MockVendorService)
	router := setupRouter(NewHandler(mockService, nil))

	tests := []struct {
		name           string
		path           string
		setupMock      func()
		expectedStatus int
	}{
		{
			name: "found",
			path: "/vendors/3",
			setupMock: func() {
				mockService.On("GetVendor", 3).Return(&models.Vendor{ID: 3}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/vendors/4",
			setupMock: func() {
				mockService.On("GetVendor", 4).Return(nil, &ledger.NotFoundError{Resource: "vendor", Key: "4"})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid id",
			path:           "/vendors/abc",
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService.ExpectedCalls = nil
			tt.setupMock()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestUpdateVendor(t *testing.T) {
	mockService := new(MockVendorService)
	router := setupRouter(NewHandler(mockService, nil))
	phone := "+48 600 000 000"
	mockService.On("UpdateVendor", 5, models.PatchVendorRequest{Phone: &phone}).Return(&models.Vendor{ID: 5, Phone: phone}, nil)

	body, _ := json.Marshal(map[string]string{"phone": phone})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PATCH", "/vendors/5", bytes.NewBuffer(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetVendors(t *testing.T) {
	mockService := new(MockVendorService)
	router := setupRouter(NewHandler(mockService, nil))
	mockService.On("GetVendors").Return([]models.Vendor{{ID: 1}, {ID: 2}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/vendors", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var vendors []models.Vendor
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &vendors))
	assert.Len(t, vendors, 2)
}
