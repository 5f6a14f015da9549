package tests

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Platypus4356/mailTrackerServer/internal/config"
	"github.com/Platypus4356/mailTrackerServer/internal/handlers"
	"github.com/Platypus4356/mailTrackerServer/internal/monitoring"
	"github.com/Platypus4356/mailTrackerServer/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const (
	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	proxyUA  = "Mozilla/5.0 (Windows NT 5.1; rv:11.0) Gecko Firefox/11.0 (via ggpht.com GoogleImageProxy)"
	botUA    = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	h := handlers.NewHandler(
		cfg,
		logger,
		store,
		services.NewClassifierService(cfg.BotTokens(), cfg.ProxyTokens()),
		services.NewQueryService(store),
		metrics,
	)
	return h.SetupRouter(nil)
}

func get(r http.Handler, path, userAgent string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestTrackAndQueryFlow(t *testing.T) {
	r := setupServer(t)

	// 1. Provision a tracking id
	w := postJSON(r, "/api/emails", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	var provisioned struct {
		EmailID     string `json:"emailId"`
		TrackingURL string `json:"trackingUrl"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &provisioned))
	assert.NotEmpty(t, provisioned.EmailID)

	// 2. Open the pixel once
	w = get(r, "/track/"+provisioned.EmailID, chromeUA)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))

	// 3. Status reflects exactly one open, first == last
	w = get(r, "/api/email/"+provisioned.EmailID+"/status", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var status struct {
		Success     bool   `json:"success"`
		Opened      bool   `json:"opened"`
		OpenCount   int    `json:"openCount"`
		FirstOpened string `json:"firstOpened"`
		LastOpened  string `json:"lastOpened"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Success)
	assert.True(t, status.Opened)
	assert.Equal(t, 1, status.OpenCount)
	assert.Equal(t, status.FirstOpened, status.LastOpened)
}

func TestTrackingContract(t *testing.T) {
	r := setupServer(t)

	t.Run("Valid Eight Char ID", func(t *testing.T) {
		w := get(r, "/track/abcdefgh", chromeUA)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))

		w = get(r, "/api/email/abcdefgh/status", "")
		assert.Contains(t, w.Body.String(), `"opened":true`)
		assert.Contains(t, w.Body.String(), `"openCount":1`)
	})

	t.Run("One Char ID Rejected", func(t *testing.T) {
		w := get(r, "/track/a", chromeUA)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bulk Body Not An Array", func(t *testing.T) {
		w := postJSON(r, "/api/emails/status", []byte(`{"emailIds":"not-an-array"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBotAndProxyPolicy(t *testing.T) {
	r := setupServer(t)

	t.Run("Bots Never Counted", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			w := get(r, "/track/bot-target", botUA)
			assert.Equal(t, http.StatusOK, w.Code)
		}
		w := get(r, "/api/email/bot-target/status", "")
		assert.Contains(t, w.Body.String(), `"openCount":0`)
	})

	t.Run("Proxy Opens Counted", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			get(r, "/track/proxy-target", proxyUA)
		}
		w := get(r, "/api/email/proxy-target/status", "")
		assert.Contains(t, w.Body.String(), `"openCount":4`)
	})
}

func TestBulkAndDump(t *testing.T) {
	r := setupServer(t)

	get(r, "/track/bulk-hot-1", chromeUA)
	get(r, "/track/bulk-hot-1", chromeUA)

	body, _ := json.Marshal(map[string][]string{
		"emailIds": {"bulk-hot-1", "bulk-cold-1"},
	})
	w := postJSON(r, "/api/emails/status", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var bulk struct {
		Results map[string]struct {
			Opened    bool `json:"opened"`
			OpenCount int  `json:"openCount"`
		} `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &bulk))
	assert.True(t, bulk.Results["bulk-hot-1"].Opened)
	assert.Equal(t, 2, bulk.Results["bulk-hot-1"].OpenCount)
	assert.False(t, bulk.Results["bulk-cold-1"].Opened)

	w = get(r, "/api/logs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
}

func TestHealthIndependentOfLog(t *testing.T) {
	r := setupServer(t)

	w := get(r, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
