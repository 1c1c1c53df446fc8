package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthStatus struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthCheck struct {
	mu               sync.Mutex
	db               Pinger
	status           HealthStatus
	startTime        time.Time
	lastResponse     []byte
	lastResponseTime time.Time
	cacheDuration    time.Duration
}

func NewHealthCheck(db Pinger, version string) *HealthCheck {
	return &HealthCheck{
		db:            db,
		status:        HealthStatus{Status: "ok", Version: version},
		startTime:     time.Now(),
		cacheDuration: 5 * time.Second,
	}
}

// Handler answers from a short lived cache so probes do not hit the database
// on every call.
func (h *HealthCheck) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.lastResponse != nil && time.Since(h.lastResponseTime) < h.cacheDuration {
			c.Data(h.statusCode(), "application/json; charset=utf-8", h.lastResponse)
			return
		}

		h.status.Status, h.status.Database = "ok", "ok"
		if h.db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err := h.db.PingContext(ctx)
			cancel()
			if err != nil {
				h.status.Status, h.status.Database = "degraded", err.Error()
			}
		}
		h.status.Uptime = time.Since(h.startTime).Round(time.Second).String()
		h.status.LastChecked = time.Now()

		response, _ := json.Marshal(h.status)
		h.lastResponse = response
		h.lastResponseTime = time.Now()

		c.Data(h.statusCode(), "application/json; charset=utf-8", response)
	}
}

func (h *HealthCheck) statusCode() int {
	if h.status.Status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
