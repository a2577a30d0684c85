package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"mailbrief/internal/llm"
	"mailbrief/internal/model"
)

// fakeCompleter answers summarize/tone calls, optionally failing for
// inputs containing failOn.
type fakeCompleter struct {
	mu     sync.Mutex
	calls  int
	failOn string
}

func (f *fakeCompleter) Complete(_ context.Context, instruction llm.Instruction, input string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(input, f.failOn) {
		return "", &llm.CompletionError{Instruction: instruction.Name, Err: errors.New("service down")}
	}
	switch instruction.Name {
	case "summarize":
		return "- summary of: " + firstWords(input, 3), nil
	case "tone":
		return "neutral, formal", nil
	}
	return "", fmt.Errorf("unknown instruction %q", instruction.Name)
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

type fakeSource struct {
	messages []model.RawMessage
	err      error
}

func (f *fakeSource) FetchRecent(_ context.Context, max int) ([]model.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if max < len(f.messages) {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func rawEmail(subject, body string) []byte {
	return []byte(strings.Join([]string{
		"From: sender@example.com",
		"Subject: " + subject,
		"Date: Mon, 06 Jul 2026 10:00:00 +0000",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n"))
}

func newTestService(source *fakeSource, completer llm.Completer) *BriefService {
	s := NewBriefService(source, completer, 2, zap.NewNop())
	s.now = func() time.Time {
		return time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestSummarizeUpload(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeSource{}, &fakeCompleter{})
	result, body, err := svc.SummarizeUpload(context.Background(), rawEmail("Hello", "please review the budget"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.Summary, "- summary of:") {
		t.Errorf("Summary: got %q", result.Summary)
	}
	if result.Tone != "neutral, formal" {
		t.Errorf("Tone: got %q", result.Tone)
	}
	if body != "please review the budget" {
		t.Errorf("body: got %q", body)
	}
}

func TestSummarizeUploadEmptyBody(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{}
	svc := newTestService(&fakeSource{}, completer)

	result, body, err := svc.SummarizeUpload(context.Background(), rawEmail("Empty", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "" || result.Tone != "" {
		t.Errorf("got %+v, want empty results", result)
	}
	if body != "" {
		t.Errorf("body: got %q, want empty", body)
	}
	if completer.calls != 0 {
		t.Errorf("completer calls: got %d, want 0", completer.calls)
	}
}

func TestBriefInboxPartialCompletionFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{messages: []model.RawMessage{
		{ID: "uid-1", Subject: "one", Raw: rawEmail("one", "first message")},
		{ID: "uid-2", Subject: "two", Raw: rawEmail("two", "second BROKEN message")},
		{ID: "uid-3", Subject: "three", Raw: rawEmail("three", "third message")},
	}}
	svc := newTestService(source, &fakeCompleter{failOn: "BROKEN"})

	briefs, err := svc.BriefInbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(briefs) != 3 {
		t.Fatalf("got %d records, want 3", len(briefs))
	}

	// 顺序必须与 fetch 顺序一致
	for i, wantID := range []string{"uid-1", "uid-2", "uid-3"} {
		if briefs[i].ID != wantID {
			t.Errorf("briefs[%d].ID: got %q, want %q", i, briefs[i].ID, wantID)
		}
	}

	if briefs[0].Error != "" || briefs[0].Summary == "" {
		t.Errorf("briefs[0]: got %+v, want populated success", briefs[0])
	}
	if briefs[2].Error != "" || briefs[2].Summary == "" {
		t.Errorf("briefs[2]: got %+v, want populated success", briefs[2])
	}
	if briefs[1].Error == "" {
		t.Errorf("briefs[1]: got %+v, want completion error recorded", briefs[1])
	}
	if briefs[1].Summary != "" {
		t.Errorf("briefs[1].Summary: got %q, want empty", briefs[1].Summary)
	}
}

func TestBriefInboxSourceFailureAborts(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("imap down")}
	svc := newTestService(source, &fakeCompleter{})

	if _, err := svc.BriefInbox(context.Background(), 5); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestBriefInboxDeadlineAndUrgency(t *testing.T) {
	t.Parallel()

	source := &fakeSource{messages: []model.RawMessage{
		{ID: "uid-1", Raw: rawEmail("due", "submit the report by 2026-07-03 please")},
		{ID: "uid-2", Raw: rawEmail("calm", "no dates in this one")},
	}}
	svc := newTestService(source, &fakeCompleter{})

	briefs, err := svc.BriefInbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if briefs[0].DaysLeft == nil || *briefs[0].DaysLeft != 2 {
		t.Fatalf("briefs[0].DaysLeft: got %v, want 2", briefs[0].DaysLeft)
	}
	if briefs[0].Urgency != 4 {
		t.Errorf("briefs[0].Urgency: got %d, want 4", briefs[0].Urgency)
	}
	if briefs[1].DaysLeft != nil {
		t.Errorf("briefs[1].DaysLeft: got %v, want nil", briefs[1].DaysLeft)
	}
	if briefs[1].Urgency != 1 {
		t.Errorf("briefs[1].Urgency: got %d, want 1", briefs[1].Urgency)
	}
}

func TestBriefInboxEmptyBodyDegrades(t *testing.T) {
	t.Parallel()

	source := &fakeSource{messages: []model.RawMessage{
		{ID: "uid-1", Subject: "empty", Raw: rawEmail("empty", "")},
	}}
	svc := newTestService(source, &fakeCompleter{})

	briefs, err := svc.BriefInbox(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := briefs[0]
	if b.Error != "" {
		t.Errorf("Error: got %q, want empty", b.Error)
	}
	if b.Summary != "" || b.Tone != "" {
		t.Errorf("got %+v, want empty summary/tone", b)
	}
	if b.Urgency != 1 {
		t.Errorf("Urgency: got %d, want 1", b.Urgency)
	}
}

func TestChunkTextShort(t *testing.T) {
	t.Parallel()

	chunks := chunkText("short text", 1500)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("got %v", chunks)
	}
}

func TestChunkTextLongOverlaps(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 600; i++ {
		fmt.Fprintf(&b, "word%03d ", i)
	}
	chunks := chunkText(b.String(), 1500)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 1500 {
			t.Errorf("chunk %d length %d exceeds limit", i, len(c))
		}
	}
	// 相邻 chunk 有重叠
	firstWordsOfSecond := strings.Fields(chunks[1])[0]
	if !strings.Contains(chunks[0], firstWordsOfSecond) {
		t.Errorf("no overlap: chunk 0 does not contain %q", firstWordsOfSecond)
	}
}

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", maxBodyChars+100)
	got := truncateBody(long)
	if !strings.HasSuffix(got, "[Email truncated due to length]") {
		t.Errorf("missing truncation marker")
	}
	if truncateBody("short") != "short" {
		t.Errorf("short body changed")
	}
}
