package preview

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barisgit/apigen/internal/typegen/generator"
)

// HealthOutput is the health check response.
type HealthOutput struct {
	Body struct {
		Status  string `json:"status" example:"ok" doc:"ok, degraded or starting"`
		Message string `json:"message,omitempty" doc:"Last generation error, if any"`
		Version string `json:"version" example:"0.1.0"`
	}
}

// addHealthCheck registers GET /health. A failed regeneration with an older
// snapshot still being served reports degraded.
func addHealthCheck(api huma.API, s *Server) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*HealthOutput, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		resp := &HealthOutput{}
		resp.Body.Version = generator.Version
		switch {
		case s.lastErr != nil:
			resp.Body.Status = "degraded"
			resp.Body.Message = s.lastErr.Error()
		case s.snapshot == nil:
			resp.Body.Status = "starting"
		default:
			resp.Body.Status = "ok"
		}
		return resp, nil
	})
}
