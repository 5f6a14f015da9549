package handlers

import (
	"log/slog"
	"os"
	"testing"

	"github.com/Platypus4356/mailTrackerServer/internal/config"
	"github.com/Platypus4356/mailTrackerServer/internal/monitoring"
	"github.com/Platypus4356/mailTrackerServer/internal/services"

	"github.com/gin-gonic/gin"
)

func setupTestHandler(t *testing.T) *Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{
		DataDir:         t.TempDir(),
		LogMaxSizeBytes: 5 * 1024 * 1024,
		PublicBaseURL:   "http://pixels.test",
		BotUATokens:     "bot,crawler,spider,slurp",
		ProxyUATokens:   "googleimageproxy,ggpht,yahoomailproxy",
	}

	metrics := monitoring.NewMetrics()
	store, err := services.NewEventLogService(cfg.DataDir, cfg.LogMaxSizeBytes, logger, metrics)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	classifier := services.NewClassifierService(cfg.BotTokens(), cfg.ProxyTokens())
	query := services.NewQueryService(store)

	return NewHandler(cfg, logger, store, classifier, query, metrics)
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}
