package handlers

import (
	"log/slog"

	"github.com/Platypus4356/mailTrackerServer/internal/config"
	"github.com/Platypus4356/mailTrackerServer/internal/monitoring"
	"github.com/Platypus4356/mailTrackerServer/internal/services"
)

type Handler struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *services.EventLogService
	classifier *services.ClassifierService
	query      *services.QueryService
	metrics    *monitoring.Metrics
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	store *services.EventLogService,
	classifier *services.ClassifierService,
	query *services.QueryService,
	metrics *monitoring.Metrics,
) *Handler {
	return &Handler{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		classifier: classifier,
		query:      query,
		metrics:    metrics,
	}
}
