// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	dto "github.com/poad/poollink/internal/http/dto/health"
	"github.com/poad/poollink/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	// DirectoryCheck hace un ping al Identity Directory. nil deshabilita el
	// componente.
	DirectoryCheck func(ctx context.Context) error
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.FromWithFields(ctx,
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}
	if v := os.Getenv("SERVICE_VERSION"); v != "" {
		response.Version = v
	}
	if git := os.Getenv("SERVICE_COMMIT"); git != "" {
		response.Commit = git
	}

	// Identity Directory (crítico: sin directorio no hay servicio)
	if s.deps.DirectoryCheck != nil {
		if err := s.deps.DirectoryCheck(ctx); err != nil {
			response.Components["directory"] = dto.HealthStatus{
				Status:  "error",
				Message: fmt.Sprintf("unavailable: %v", err),
			}
			response.Status = "unavailable"
			log.Error("directory unavailable", logger.Err(err))
		} else {
			response.Components["directory"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		response.Components["directory"] = dto.HealthStatus{
			Status:  "disabled",
			Message: "check not configured",
		}
	}

	return response
}
