package health

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vipin760/hand-pass-BE/internal/shared/utils"
)

// DeviceCounter reports how many scanners are currently online.
// Satisfied by devices.Store.
type DeviceCounter interface {
	CountOnline(ctx context.Context) (int64, error)
}

type Handler struct {
	db        *sql.DB
	devices   DeviceCounter
	startTime time.Time
}

func NewHandler(db *sql.DB, devices DeviceCounter) *Handler {
	return &Handler{
		db:        db,
		devices:   devices,
		startTime: time.Now(),
	}
}

type HealthResponse struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Uptime   string         `json:"uptime"`
	Database DatabaseHealth `json:"database"`
	Devices  DeviceHealth   `json:"devices"`
	System   SystemHealth   `json:"system"`
}

type DatabaseHealth struct {
	Status          string `json:"status"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	MaxOpenConns    int    `json:"max_open_conns"`
}

type DeviceHealth struct {
	Online int64 `json:"online"`
}

type SystemHealth struct {
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	NumCPU       int    `json:"num_cpu"`
}

func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealth := h.getDatabaseHealth(ctx)

	overallStatus := "ok"
	if dbHealth.Status != "ok" {
		overallStatus = "degraded"
	}

	var deviceHealth DeviceHealth
	if n, err := h.devices.CountOnline(ctx); err == nil {
		deviceHealth.Online = n
	}

	utils.Success(c, http.StatusOK, HealthResponse{
		Status:   overallStatus,
		Version:  "1.0.0",
		Uptime:   time.Since(h.startTime).String(),
		Database: dbHealth,
		Devices:  deviceHealth,
		System:   h.getSystemHealth(),
	})
}

func (h *Handler) Ready(c *gin.Context) {
	dbStatus := h.checkDatabase(c.Request.Context())
	if dbStatus != "ok" {
		utils.Success(c, http.StatusServiceUnavailable, HealthResponse{
			Status:   "not ready",
			Database: DatabaseHealth{Status: dbStatus},
		})
		return
	}
	utils.Success(c, http.StatusOK, HealthResponse{
		Status:   "ready",
		Database: DatabaseHealth{Status: "ok"},
	})
}

func (h *Handler) Alive(c *gin.Context) {
	utils.Success(c, http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (h *Handler) checkDatabase(ctx context.Context) string {
	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(dbCtx); err != nil {
		return "error"
	}
	return "ok"
}

func (h *Handler) getDatabaseHealth(ctx context.Context) DatabaseHealth {
	status := h.checkDatabase(ctx)
	stats := h.db.Stats()

	return DatabaseHealth{
		Status:          status,
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
	}
}

func (h *Handler) getSystemHealth() SystemHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemHealth{
		NumGoroutine: runtime.NumGoroutine(),
		MemAllocMB:   m.Alloc / 1024 / 1024,
		NumCPU:       runtime.NumCPU(),
	}
}
