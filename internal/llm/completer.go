// Package llm talks to a remote chat-completion service to produce
// email summaries and tone labels.
package llm

import (
	"context"
	"fmt"
)

// Instruction is a fixed prompt template sent alongside input text.
type Instruction struct {
	// Name 用于指标与错误信息
	Name   string
	System string
	// User 包一层输入文本的模板，带一个 %s
	User string
}

var (
	// Summarize asks for a bullet-point summary of one email.
	Summarize = Instruction{
		Name: "summarize",
		System: "You are an email assistant. Summarize the email in clear bullet points, " +
			"focusing on key information, deadlines, tasks, sender intent, and urgency. " +
			"Limit answer to 50 words. Do not return anything other than the summary, " +
			"especially not something like ('Here is the summary.....')",
		User: "Summarize the following email in clear and concise bullet points. " +
			"Do not return anything other than the summary, especially not something " +
			"like ('Here is the summary.....')\n\nEmail:\n%s\n\nSummary:",
	}

	// Tone asks for a short tone label for an email summary.
	Tone = Instruction{
		Name: "tone",
		System: "You are an email tone analysis assistant. " +
			"Identify the overall tone of the email in a short phrase " +
			"(for example: formal, urgent, friendly, frustrated, promotional, neutral)." +
			"Return in 2-3 words.",
		User: "Describe the tone of the following email.\n\nEmail:\n%s\n\nTone:",
	}
)

// Completer is the capability the rest of the service depends on, so
// the concrete provider stays swappable and mockable.
type Completer interface {
	Complete(ctx context.Context, instruction Instruction, input string) (string, error)
}

// CompletionError marks a failure of the remote completion service:
// unreachable, non-2xx, or an unparseable response. It is distinct from
// a successfully returned empty result.
type CompletionError struct {
	Instruction string
	Err         error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion %s failed: %v", e.Instruction, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
