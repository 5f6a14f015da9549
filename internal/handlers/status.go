package handlers

import (
	"net/http"
	"strings"

	"github.com/Platypus4356/mailTrackerServer/pkg/utils"

	"github.com/gin-gonic/gin"
)

type bulkStatusRequest struct {
	EmailIDs []string `json:"emailIds"`
}

// EmailStatus reports one email's summary plus its full open sequence.
// Unknown ids get a zero summary, never an error.
func (h *Handler) EmailStatus(c *gin.Context) {
	emailID := c.Param("email_id")
	sum := h.query.Status(emailID)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"emailId":     emailID,
		"opened":      sum.Opened,
		"openCount":   sum.OpenCount,
		"firstOpened": sum.FirstOpened,
		"lastOpened":  sum.LastOpened,
		"opens":       h.query.Opens(emailID),
	})
}

// BulkEmailStatus summarizes a batch of emails in one request.
func (h *Handler) BulkEmailStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EmailIDs == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "emailIds must be an array of strings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": h.query.BulkStatus(req.EmailIDs),
	})
}

// DumpLogs dumps every indexed open event. Diagnostic endpoint.
func (h *Handler) DumpLogs(c *gin.Context) {
	logs := h.query.DumpAll()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   len(logs),
		"logs":    logs,
	})
}

// ProvisionEmail mints a fresh tracking identifier and the pixel URL to
// embed for it.
func (h *Handler) ProvisionEmail(c *gin.Context) {
	emailID := utils.GenerateTrackingID()
	trackingURL := strings.TrimRight(h.cfg.PublicBaseURL, "/") + "/track/" + emailID

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"emailId":     emailID,
		"trackingUrl": trackingURL,
	})
}
