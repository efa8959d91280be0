package rewrite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"askdb-be/internal/constant"
	"askdb-be/internal/pkg/logger"
	"askdb-be/pkg/llm"
	"askdb-be/pkg/store"
)

// Rewriter collapses a follow-up question plus prior turns into one
// standalone question. This stage degrades gracefully: any failure returns
// the original question and never fails the pipeline.
type Rewriter struct {
	llmProvider  llm.LLMProvider
	log          logger.ILogger
	timeout      time.Duration
	maxTurnPairs int
}

func NewRewriter(llmProvider llm.LLMProvider, log logger.ILogger, timeout time.Duration, maxTurnPairs int) *Rewriter {
	return &Rewriter{
		llmProvider:  llmProvider,
		log:          log,
		timeout:      timeout,
		maxTurnPairs: maxTurnPairs,
	}
}

// Rewrite returns the standalone form of question. Empty history is the fast
// path: the input is returned unchanged without any model call.
func (r *Rewriter) Rewrite(ctx context.Context, question string, history []store.Turn) string {
	if len(history) == 0 {
		return question
	}

	transcript := r.buildTranscript(history)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf(constant.RewriteQuestionPromptV1, transcript, question)
	rewritten, err := r.llmProvider.Generate(callCtx, prompt, llm.WithTemperature(0))
	if err != nil {
		r.log.Warn("rewriter", "rewrite failed, using original question", map[string]interface{}{
			"error": err.Error(),
		})
		return question
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question
	}
	return rewritten
}

// buildTranscript renders the most recent turn pairs. Older turns are
// dropped before prompting to bound prompt size.
func (r *Rewriter) buildTranscript(history []store.Turn) string {
	maxTurns := r.maxTurnPairs * 2
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	var sb strings.Builder
	for _, turn := range history {
		role := "User"
		if turn.Role == constant.TurnRoleAssistant {
			role = "Assistant"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
