package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment/internal/ledger"
	"garment/internal/locking"
	custom_error "garment/pkg/errors"
)

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"validation", &ledger.ValidationError{Property: "Weight", Message: "failed on the 'gt' rule"}, http.StatusBadRequest},
		{"not found", &ledger.NotFoundError{Resource: "cutting batch", Key: "7"}, http.StatusNotFound},
		{"wrapped record not found", fmt.Errorf("load: %w", ledger.ErrRecordNotFound), http.StatusNotFound},
		{"insufficient", &ledger.InsufficientStockError{FabricName: "Cotton", Color: "Red"}, http.StatusConflict},
		{"already reconciled", ledger.ErrAlreadyReconciled, http.StatusConflict},
		{"unique violation", custom_error.WrapDBError("lot exists", "23505"), http.StatusConflict},
		{"lock", fmt.Errorf("failed to lock stock records: %w", locking.ErrNotObtained), http.StatusServiceUnavailable},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Respond(c, tt.err, "Failed")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestRespond_InsufficientStockBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, &ledger.InsufficientStockError{
		FabricName: "Cotton",
		Color:      "Red",
		Available:  decimal.NewFromInt(5),
		Requested:  decimal.NewFromInt(6),
	}, "Failed")

	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"fabric_name": "Cotton",
		"color":       "Red",
		"available":   "5",
		"requested":   "6",
	}, body.Details)
}
