package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailbrief/internal/llm"
	"mailbrief/internal/service"
	"mailbrief/pkg/logger"
)

type SummarizeHandler struct {
	brief  *service.BriefService
	logger *zap.Logger
}

func NewSummarizeHandler(brief *service.BriefService, log *zap.Logger) *SummarizeHandler {
	return &SummarizeHandler{brief: brief, logger: log}
}

// SummarizeEmail handles POST /summarize_email: one uploaded .eml file
// per request, answered with summary, tone and the extracted body.
func (h *SummarizeHandler) SummarizeEmail(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": "missing file field"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".eml") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": "only .eml files are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": "failed to read upload"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": "failed to read upload"})
		return
	}

	ctx := c.Request.Context()
	result, body, err := h.brief.SummarizeUpload(ctx, raw)
	if err != nil {
		var cerr *llm.CompletionError
		if errors.As(err, &cerr) {
			logger.WithTrace(ctx, h.logger).Error("completion failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "completion_failed", "detail": cerr.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "detail": "unparseable email container"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":   result.Summary,
		"tone":      result.Tone,
		"raw_email": body,
	})
}
