package security

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"garment/internal/rate_limiter"
	"garment/pkg/models"
	"garment/pkg/roles"
)

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func setup(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, Configure("test-secret", time.Hour))
}

func TestConfigureRejectsEmptySecret(t *testing.T) {
	assert.Error(t, Configure("", time.Hour))
}

func TestJWTMiddleware(t *testing.T) {
	setup(t)

	token, err := GenerateJWT("7", "moderator", "ala")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", JWTMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID"), "role": c.GetString("role")})
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"userID":"7","role":"moderator"}`, w.Body.String())
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	setup(t)

	tests := []struct {
		name     string
		role     string
		required string
		expected int
	}{
		{"admin passes moderator route", "admin", "moderator", http.StatusOK},
		{"user blocked on admin route", "user", "admin", http.StatusForbidden},
		{"same level passes", "user", "user", http.StatusOK},
		{"unknown role blocked", "guest", "user", http.StatusForbidden},
		{"no role blocked", "", "user", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) {
				if tt.role != "" {
					c.Set("role", tt.role)
				}
				c.Next()
			}, Authorize(tt.required), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	setup(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: 3, Username: "ala", PasswordHash: string(hash), Role: roles.Admin}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockUserFinder)
		expectedStatus int
	}{
		{
			name: "valid credentials",
			body: map[string]string{"username": "ala", "password": "secret123"},
			setupMock: func(m *MockUserFinder) {
				m.On("FindByUsername", mock.Anything, "ala").Return(user, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			body: map[string]string{"username": "ala", "password": "nope"},
			setupMock: func(m *MockUserFinder) {
				m.On("FindByUsername", mock.Anything, "ala").Return(user, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown user",
			body: map[string]string{"username": "ghost", "password": "secret123"},
			setupMock: func(m *MockUserFinder) {
				m.On("FindByUsername", mock.Anything, "ghost").Return(nil, errors.New("not found"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing password",
			body:           map[string]string{"username": "ala"},
			setupMock:      func(m *MockUserFinder) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := new(MockUserFinder)
			tt.setupMock(finder)

			router := gin.New()
			NewLoginHandler(finder, rate_limiter.NewRateLimiter(100, time.Minute), nil).RegisterRoutes(router)

			body, _ := json.Marshal(tt.body)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth", bytes.NewBuffer(body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				claims, err := parseToken(resp["token"])
				require.NoError(t, err)
				assert.Equal(t, "3", claims["userID"])
				assert.Equal(t, "admin", claims["role"])
			}
			finder.AssertExpectations(t)
		})
	}
}

func TestLoginHandlerRateLimit(t *testing.T) {
	setup(t)

	finder := new(MockUserFinder)
	finder.On("FindByUsername", mock.Anything, "ala").Return(nil, errors.New("not found"))

	router := gin.New()
	NewLoginHandler(finder, rate_limiter.NewRateLimiter(2, time.Minute), nil).RegisterRoutes(router)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth", bytes.NewBufferString(`{"username":"ala","password":"x"}`))
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		}
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, isPrivateIP("10.1.2.3"))
	assert.True(t, isPrivateIP("172.20.0.1"))
	assert.False(t, isPrivateIP("172.32.0.1"))
	assert.False(t, isPrivateIP("8.8.8.8"))
}
