package application

import (
	"context"

	"github.com/alorle/iptv-viewer/internal/lineup"
	"github.com/alorle/iptv-viewer/internal/port/driven"
)

// snapshotter exposes the current channel list.
type snapshotter interface {
	Snapshot() lineup.Snapshot
}

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	db       driven.PlaylistRepository
	channels snapshotter
}

// NewHealthService creates a new health check service.
func NewHealthService(db driven.PlaylistRepository, channels snapshotter) *HealthService {
	return &HealthService{
		db:       db,
		channels: channels,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status     string          // "ok" if all components are healthy, "degraded" otherwise
	DB         ComponentHealth // database health
	Generation uint64          // generation of the installed channel list
	Channels   int             // size of the installed channel list
}

// Check performs health checks on all dependencies.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "ok",
		DB:     ComponentHealth{Status: "ok"},
	}

	if err := s.db.Ping(ctx); err != nil {
		status.DB = ComponentHealth{
			Status: "error",
			Error:  err.Error(),
		}
		status.Status = "degraded"
	}

	if s.channels != nil {
		snap := s.channels.Snapshot()
		status.Generation = snap.Generation
		status.Channels = len(snap.Channels)
	}

	return status
}
