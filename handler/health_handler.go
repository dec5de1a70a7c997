package handler

import (
	"academy-api/config"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// HealthCheck godoc
// @Summary      Show the status of server
// @Description  get the status of server
// @Tags         health
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "API is healthy and running"})
}

// DBPinger is satisfied by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type ActuatorHandler struct {
	db    DBPinger
	redis RedisPinger
}

// NewActuatorHandler builds the actuator endpoints. redis may be nil when the
// cache is disabled.
func NewActuatorHandler(db DBPinger, redis RedisPinger) *ActuatorHandler {
	return &ActuatorHandler{db: db, redis: redis}
}

type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthReport struct {
	Status     string                     `json:"status"`
	Components map[string]componentHealth `json:"components"`
}

// Health godoc
// @Summary      Component health
// @Description  Database and cache status. Responds 503 when the database is down.
// @Tags         actuator
// @Produce      json
// @Success      200  {object}  healthReport
// @Failure      503  {object}  healthReport
// @Router       /actuator/health [get]
func (h *ActuatorHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{Status: statusUp, Components: map[string]componentHealth{}}
	status := http.StatusOK

	if h.db == nil {
		report.Components["db"] = componentHealth{Status: statusDown, Error: "not configured"}
	} else if err := h.db.PingContext(ctx); err != nil {
		report.Components["db"] = componentHealth{Status: statusDown, Error: err.Error()}
	} else {
		report.Components["db"] = componentHealth{Status: statusUp}
	}
	if report.Components["db"].Status == statusDown {
		report.Status = statusDown
		status = http.StatusServiceUnavailable
	}

	// A failing cache degrades reads but does not take the service down.
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			report.Components["redis"] = componentHealth{Status: statusDown, Error: err.Error()}
		} else {
			report.Components["redis"] = componentHealth{Status: statusUp}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(report)
}

// Info godoc
// @Summary      Build information
// @Tags         actuator
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /actuator/info [get]
func (h *ActuatorHandler) Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"name":    config.AppConfig.App.Name,
		"version": config.AppConfig.App.Version,
	})
}

// Prometheus serves the default registry in the text exposition format.
func (h *ActuatorHandler) Prometheus() http.Handler {
	return promhttp.Handler()
}
