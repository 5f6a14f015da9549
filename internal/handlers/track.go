package handlers

import (
	"net/http"
	"time"

	"github.com/Platypus4356/mailTrackerServer/internal/models"
	"github.com/Platypus4356/mailTrackerServer/pkg/utils"

	"github.com/gin-gonic/gin"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// ServeTrackingPixel records an open for the requested email and answers
// with the pixel. The pixel is the contract with the mail client: once the
// identifier validates, every outcome (recorded, skipped as bot, failed to
// write) still ends in servePixel.
func (h *Handler) ServeTrackingPixel(c *gin.Context) {
	emailID := c.Param("tracking_id")
	if !utils.ValidTrackingID(emailID) {
		h.metrics.InvalidIDs.Inc()
		c.String(http.StatusBadRequest, "invalid tracking id")
		return
	}

	userAgent := c.Request.UserAgent()
	cls := h.classifier.Classify(userAgent, c.Request.Referer())
	if cls.Bot {
		h.metrics.BotRequests.Inc()
		h.logger.Debug("Skipping bot request", "email_id", emailID, "user_agent", userAgent)
		h.servePixel(c)
		return
	}

	ev := models.OpenEvent{
		EmailID:    emailID,
		ObservedAt: time.Now().UTC(),
		SourceIP:   c.ClientIP(),
		UserAgent:  userAgent,
		Referrer:   c.Request.Referer(),
		ProxyFetch: cls.ProxyFetch,
	}
	if err := h.store.Append(ev); err != nil {
		h.metrics.LogWriteFailures.Inc()
		h.logger.Error("Failed to record open", "email_id", emailID, "error", err)
	} else {
		h.metrics.OpensRecorded.Inc()
		if cls.ProxyFetch {
			h.metrics.ProxyOpens.Inc()
		}
	}

	h.servePixel(c)
}

func (h *Handler) servePixel(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Data(http.StatusOK, "image/gif", pixelGIF)
}
