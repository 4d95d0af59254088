package api

import (
	"context"
	"net/http"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/models/entities"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(deps *Dependencies, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)

		dbStatus := entities.ServiceStatus{Status: "ok", Details: "Database connected"}
		if deps.SQL == nil {
			dbStatus = entities.ServiceStatus{Status: "down", Details: "no database handle"}
		} else if err := deps.SQL.PingContext(ctx); err != nil {
			dbStatus = entities.ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["database"] = dbStatus

		cacheStatus := entities.ServiceStatus{Status: "ok", Details: "In-memory cache"}
		if p, ok := deps.Services.Cache.(pinger); ok {
			cacheStatus.Details = "Redis connected"
			if err := p.Ping(ctx); err != nil {
				cacheStatus = entities.ServiceStatus{Status: "down", Details: err.Error()}
			}
		}
		services["cache"] = cacheStatus

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}

		common.WriteJSON(w, code, entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		})
	}
}
