package health

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/auteur/internal/gateway"
	"github.com/eleven-am/auteur/internal/inference"
	"github.com/eleven-am/auteur/internal/relay"
	"github.com/eleven-am/auteur/internal/transport"
	"github.com/eleven-am/auteur/internal/vision"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines         int    `json:"goroutines"`
	MemoryAllocMB      uint64 `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64 `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64 `json:"memory_sys_mb"`
	NumGC              uint32 `json:"num_gc"`
}

type RequestStats struct {
	TotalRequests     uint64 `json:"total_requests"`
	ActiveConnections int64  `json:"active_connections"`
}

type PipelineStats struct {
	State     vision.State     `json:"state"`
	Freshness vision.Freshness `json:"freshness"`
	History   int              `json:"history"`
	LastError string           `json:"last_error,omitempty"`
}

type Stats struct {
	Pipeline  *PipelineStats         `json:"pipeline,omitempty"`
	Relay     *relay.Stats           `json:"relay,omitempty"`
	Inference *inference.RunnerStats `json:"inference,omitempty"`
	Rooms     *gateway.HubStats      `json:"rooms,omitempty"`
	Requests  RequestStats           `json:"requests"`
	Runtime   RuntimeStats           `json:"runtime"`
}

type HealthResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Stats         Stats                      `json:"stats"`
	Components    map[string]ComponentStatus `json:"components"`
}

type Pipeline interface {
	Snapshot() vision.Snapshot
}

type ModelProbe interface {
	IsAvailable(ctx context.Context) bool
}

type RoomStatus interface {
	State() transport.State
}

// Deps lists what the handler reports on. Every field is optional; absent
// components are left out of the readiness report.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Model     ModelProbe
	Room      RoomStatus
	Pipeline  Pipeline
	Relay     *relay.Buffer
	Inference *inference.Runner
	Hub       *gateway.Hub
	Version   string
}

type Handler struct {
	deps      Deps
	startTime time.Time

	totalRequests     uint64
	activeConnections int64
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

func (h *Handler) IncrementRequests() {
	atomic.AddUint64(&h.totalRequests, 1)
}

func (h *Handler) IncrementConnections() {
	atomic.AddInt64(&h.activeConnections, 1)
}

func (h *Handler) DecrementConnections() {
	atomic.AddInt64(&h.activeConnections, -1)
}

// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// @Summary      Readiness probe
// @Description  Checks configured components and reports pipeline statistics
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health/ready [get]
func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	type namedCheck struct {
		name  string
		check func(context.Context) ComponentStatus
	}
	var checks []namedCheck
	if h.deps.DB != nil {
		checks = append(checks, namedCheck{"database", h.checkDatabase})
	}
	if h.deps.Redis != nil {
		checks = append(checks, namedCheck{"redis", h.checkRedis})
	}
	if h.deps.Model != nil {
		checks = append(checks, namedCheck{"inference", h.checkModel})
	}
	if h.deps.Room != nil {
		checks = append(checks, namedCheck{"room", h.checkRoom})
	}

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.name, check.check)
	}
	wg.Wait()

	overallStatus := computeOverallStatus(components)

	resp := HealthResponse{
		Status:        overallStatus,
		Timestamp:     time.Now().UTC(),
		Version:       h.deps.Version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats:         h.stats(),
		Components:    components,
	}

	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, resp)
}

func (h *Handler) stats() Stats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := Stats{
		Requests: RequestStats{
			TotalRequests:     atomic.LoadUint64(&h.totalRequests),
			ActiveConnections: atomic.LoadInt64(&h.activeConnections),
		},
		Runtime: RuntimeStats{
			Goroutines:         runtime.NumGoroutine(),
			MemoryAllocMB:      memStats.Alloc / 1024 / 1024,
			MemoryTotalAllocMB: memStats.TotalAlloc / 1024 / 1024,
			MemorySysMB:        memStats.Sys / 1024 / 1024,
			NumGC:              memStats.NumGC,
		},
	}

	if h.deps.Pipeline != nil {
		snap := h.deps.Pipeline.Snapshot()
		stats.Pipeline = &PipelineStats{
			State:     snap.State,
			Freshness: snap.Freshness,
			History:   snap.HistorySize,
			LastError: snap.LastError,
		}
	}
	if h.deps.Relay != nil {
		s := h.deps.Relay.Stats()
		stats.Relay = &s
	}
	if h.deps.Inference != nil {
		s := h.deps.Inference.Stats()
		stats.Inference = &s
	}
	if h.deps.Hub != nil {
		s := h.deps.Hub.Stats()
		stats.Rooms = &s
	}
	return stats
}

func (h *Handler) checkDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()
	sqlDB, err := h.deps.DB.DB()
	if err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "failed to get underlying db",
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{
		Status:    evaluateDBStats(sqlDB.Stats()),
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func evaluateDBStats(stats sql.DBStats) Status {
	if stats.OpenConnections >= stats.MaxOpenConnections && stats.MaxOpenConnections > 0 {
		return StatusDegraded
	}
	return StatusHealthy
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()
	if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

// An unreachable model degrades readiness but never fails it.
func (h *Handler) checkModel(ctx context.Context) ComponentStatus {
	start := time.Now()
	if !h.deps.Model.IsAvailable(ctx) {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "model not reachable",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) checkRoom(_ context.Context) ComponentStatus {
	start := time.Now()
	status := ComponentStatus{Status: StatusHealthy}

	switch state := h.deps.Room.State(); state {
	case transport.StateConnected:
	case transport.StateConnecting, transport.StateReconnecting:
		status.Status = StatusDegraded
		status.Error = string(state)
	default:
		status.Status = StatusUnhealthy
		status.Error = string(state)
	}

	status.LatencyMs = time.Since(start).Milliseconds()
	return status
}

func computeOverallStatus(components map[string]ComponentStatus) Status {
	criticalComponents := []string{"database", "redis"}

	for _, name := range criticalComponents {
		if status, ok := components[name]; ok && status.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}

	hasUnhealthy := false
	hasDegraded := false
	for _, status := range components {
		if status.Status == StatusUnhealthy {
			hasUnhealthy = true
		}
		if status.Status == StatusDegraded {
			hasDegraded = true
		}
	}

	if hasUnhealthy || hasDegraded {
		return StatusDegraded
	}

	return StatusHealthy
}
