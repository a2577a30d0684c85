package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailbrief/internal/mailsource"
	"mailbrief/internal/model"
	"mailbrief/internal/service"
	"mailbrief/pkg/logger"
)

const defaultMaxResults = 10

type InboxHandler struct {
	brief  *service.BriefService
	logger *zap.Logger
}

func NewInboxHandler(brief *service.BriefService, log *zap.Logger) *InboxHandler {
	return &InboxHandler{brief: brief, logger: log}
}

// UrgentEmails handles GET /inbox/urgent?max_results=N: fetches the N
// most recent inbox messages and returns one record per message. A
// per-message completion failure shows up on that record only; a mail
// source failure fails the whole request.
func (h *InboxHandler) UrgentEmails(c *gin.Context) {
	maxStr := c.DefaultQuery("max_results", strconv.Itoa(defaultMaxResults))
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": "max_results must be a positive integer"})
		return
	}

	ctx := c.Request.Context()
	briefs, err := h.brief.BriefInbox(ctx, max)
	if err != nil {
		var serr *mailsource.SourceError
		if errors.As(err, &serr) {
			logger.WithTrace(ctx, h.logger).Error("mail source failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "mail_source_failed", "detail": serr.Error()})
			return
		}
		logger.WithTrace(ctx, h.logger).Error("inbox brief failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if briefs == nil {
		briefs = []model.InboxBrief{}
	}
	c.JSON(http.StatusOK, gin.H{"items": briefs})
}
