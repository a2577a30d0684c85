// Package service runs the per-message processing pipeline: extract,
// deadline scan, urgency score, summarize, tone.
package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailbrief/internal/deadline"
	"mailbrief/internal/extract"
	"mailbrief/internal/llm"
	"mailbrief/internal/mailsource"
	"mailbrief/internal/model"
	"mailbrief/pkg/logger"
	"mailbrief/pkg/metrics"
)

const (
	// 只在正文开头这段范围内找截止日期
	deadlineScanWindow = 1000
	summaryMaxChars    = 800
	reduceInputCap     = 3000
)

type BriefService struct {
	source        mailsource.Source
	completer     llm.Completer
	maxConcurrent int
	logger        *zap.Logger
	now           func() time.Time
}

func NewBriefService(source mailsource.Source, completer llm.Completer, maxConcurrent int, log *zap.Logger) *BriefService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &BriefService{
		source:        source,
		completer:     completer,
		maxConcurrent: maxConcurrent,
		logger:        log,
		now:           time.Now,
	}
}

// SummarizeUpload processes one uploaded email container and returns
// the summary, tone and the extracted body. An empty body yields empty
// results, not an error; unparseable containers do error.
func (s *BriefService) SummarizeUpload(ctx context.Context, raw []byte) (model.SummaryResult, string, error) {
	parsed, err := extract.Parse(raw)
	if err != nil {
		return model.SummaryResult{}, "", err
	}

	body := truncateBody(parsed.Body)
	result, err := s.summarizeText(ctx, body)
	return result, body, err
}

// BriefInbox fetches up to max recent messages and processes them
// concurrently, capped at the configured number of simultaneous
// completion calls. A completion failure for one message is recorded on
// that message's record and never aborts the batch; a mail-source
// failure aborts before any per-item work.
func (s *BriefService) BriefInbox(ctx context.Context, max int) ([]model.InboxBrief, error) {
	messages, err := s.source.FetchRecent(ctx, max)
	if err != nil {
		return nil, err
	}

	briefs := make([]model.InboxBrief, len(messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, msg := range messages {
		g.Go(func() error {
			briefs[i] = s.processMessage(gctx, msg)
			return nil
		})
	}
	_ = g.Wait()

	return briefs, nil
}

// processMessage computes one message's record. Everything before the
// completion call is local and cannot fail the record: a missing body
// or deadline is degradation, not an error.
func (s *BriefService) processMessage(ctx context.Context, msg model.RawMessage) model.InboxBrief {
	brief := model.InboxBrief{
		ID:      msg.ID,
		Subject: msg.Subject,
		From:    msg.From,
		Date:    msg.Date,
		Snippet: msg.Snippet,
	}

	body := ""
	if parsed, err := extract.Parse(msg.Raw); err == nil {
		body = parsed.Body
		if brief.Subject == "" {
			brief.Subject = parsed.Subject
		}
		if brief.From == "" {
			brief.From = parsed.From
		}
		if brief.Date == "" {
			brief.Date = parsed.Date
		}
	} else {
		logger.WithTrace(ctx, s.logger).Warn("failed to parse message body",
			zap.String("id", msg.ID), zap.Error(err))
	}
	body = truncateBody(body)

	now := s.now()
	window := body
	if len(window) > deadlineScanWindow {
		window = window[:deadlineScanWindow]
	}
	if due, ok := deadline.Scan(window, now); ok {
		days := deadline.DaysLeft(due, now)
		brief.DaysLeft = &days
	}
	brief.Urgency = deadline.Urgency(brief.DaysLeft)
	if brief.DaysLeft != nil {
		metrics.IncrementDeadlineDetected(strconv.Itoa(brief.Urgency))
	}

	result, err := s.summarizeText(ctx, body)
	brief.Summary = result.Summary
	brief.Tone = result.Tone
	if err != nil {
		brief.Error = err.Error()
		metrics.IncrementMessageProcessed("completion_failed")
		logger.WithTrace(ctx, s.logger).Warn("completion failed for message",
			zap.String("id", msg.ID), zap.Error(err))
	} else {
		metrics.IncrementMessageProcessed("success")
	}

	return brief
}

// summarizeText produces summary and tone for one body. The tone is
// derived from the summary, not the full body. On error the returned
// result still carries whatever part succeeded.
func (s *BriefService) summarizeText(ctx context.Context, body string) (model.SummaryResult, error) {
	var result model.SummaryResult

	if strings.TrimSpace(body) == "" {
		return result, nil
	}

	summary, err := s.mapReduceSummarize(ctx, chunkText(body, chunkChars))
	if err != nil {
		return result, err
	}
	result.Summary = summary

	if summary == "" {
		return result, nil
	}

	tone, err := s.completer.Complete(ctx, llm.Tone, summary)
	if err != nil {
		return result, err
	}
	result.Tone = tone
	return result, nil
}

// mapReduceSummarize summarizes each chunk concurrently, then reduces
// the chunk summaries into one. Individual chunk failures are tolerated
// as long as at least one chunk succeeds.
func (s *BriefService) mapReduceSummarize(ctx context.Context, chunks []string) (string, error) {
	if len(chunks) == 1 {
		summary, err := s.completer.Complete(ctx, llm.Summarize, chunks[0])
		return capLength(summary, summaryMaxChars), err
	}

	summaries := make([]string, len(chunks))
	errs := make([]error, len(chunks))

	g := &errgroup.Group{}
	g.SetLimit(s.maxConcurrent)
	for i, chunk := range chunks {
		g.Go(func() error {
			summaries[i], errs[i] = s.completer.Complete(ctx, llm.Summarize, chunk)
			return nil
		})
	}
	_ = g.Wait()

	var valid []string
	var firstErr error
	for i, summary := range summaries {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		if summary != "" {
			valid = append(valid, summary)
		}
	}
	if len(valid) == 0 {
		return "", firstErr
	}

	combined := capLength(strings.Join(valid, " "), reduceInputCap)
	final, err := s.completer.Complete(ctx, llm.Summarize,
		"Summarize these email summaries briefly:\n\n"+combined)
	if err != nil {
		return "", err
	}
	return capLength(final, summaryMaxChars), nil
}

func capLength(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
