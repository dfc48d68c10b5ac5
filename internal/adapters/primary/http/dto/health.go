package dto

import (
	"math"

	"markdown-viewer-service/internal/core/services"
)

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthResponse reports null counts for backends that could not answer.
type HealthResponse struct {
	Status        string  `json:"status"`
	StoredFiles   *int    `json:"stored_files"`
	Installations *int    `json:"installations"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func ToHealthResponse(stats *services.Stats, healthy bool) HealthResponse {
	status := HealthOK
	if !healthy {
		status = HealthDegraded
	}
	return HealthResponse{
		Status:        status,
		StoredFiles:   stats.StoredFiles,
		Installations: stats.Installations,
		UptimeSeconds: math.Round(stats.Uptime.Seconds()*1000) / 1000,
	}
}
