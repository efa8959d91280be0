package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"askdb-be/internal/constant"
	"askdb-be/internal/pkg/logger"
	"askdb-be/pkg/llm"
	"askdb-be/pkg/rag/execute"
	"askdb-be/pkg/rag/truncate"
	"askdb-be/pkg/retry"
)

// Result carries the prose answer plus whether the summarizer had to fall
// back to its deterministic sentence.
type Result struct {
	Answer   string
	Degraded bool
}

// Summarizer turns (possibly truncated) tabular results into prose. It is
// best-effort: on exhaustion it degrades to a deterministic sentence rather
// than failing the request.
type Summarizer struct {
	llmProvider llm.LLMProvider
	log         logger.ILogger
	rowPolicy   truncate.RowPolicy
	policy      retry.Policy
}

func NewSummarizer(llmProvider llm.LLMProvider, log logger.ILogger, rowPolicy truncate.RowPolicy, maxAttempts int, perAttemptTimeout time.Duration) *Summarizer {
	return &Summarizer{
		llmProvider: llmProvider,
		log:         log,
		rowPolicy:   rowPolicy,
		policy: retry.Policy{
			MaxAttempts:       maxAttempts,
			Backoff:           retry.ExponentialBackoff(500 * time.Millisecond),
			PerAttemptTimeout: perAttemptTimeout,
		},
	}
}

// Summarize answers question from result. Fast path: a single row with a
// single column needs no model call at all.
func (s *Summarizer) Summarize(ctx context.Context, question string, result *execute.QueryResult) *Result {
	if len(result.Rows) == 0 {
		return &Result{Answer: "The query returned no rows."}
	}

	if len(result.Rows) == 1 && len(result.Columns) == 1 {
		value := result.Rows[0][result.Columns[0]]
		return &Result{Answer: fmt.Sprintf("Result: %v", value)}
	}

	rows, shownAll := s.trimRows(result.Rows)

	dataBlock, err := json.Marshal(rows)
	if err != nil {
		return s.fallback(result)
	}

	coverageNote := ""
	if !shownAll || result.Truncated {
		coverageNote = fmt.Sprintf(constant.SummarizePartialNoteV1, len(rows), result.TotalRows)
	}

	prompt := fmt.Sprintf(constant.SummarizeResultPromptV1, question, string(dataBlock), coverageNote)

	var answer string
	err = s.policy.Do(ctx, func(attemptCtx context.Context) error {
		out, err := s.llmProvider.Generate(attemptCtx, prompt, llm.WithTemperature(0.2))
		if err != nil {
			return err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			return fmt.Errorf("model returned empty summary")
		}
		answer = out
		return nil
	})
	if err != nil {
		s.log.Warn("summarizer", "summarization degraded to fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return s.fallback(result)
	}

	return &Result{Answer: answer}
}

// trimRows applies the second, independent truncation pass: a row cap plus a
// serialized-size budget, never going below the policy floor.
func (s *Summarizer) trimRows(rows []map[string]interface{}) ([]map[string]interface{}, bool) {
	keep := s.rowPolicy.Rows(len(rows), func(n int) int {
		b, err := json.Marshal(rows[:n])
		if err != nil {
			return 0
		}
		return len(b)
	})
	if keep >= len(rows) {
		return rows, true
	}
	return rows[:keep], false
}

func (s *Summarizer) fallback(result *execute.QueryResult) *Result {
	return &Result{
		Answer:   fmt.Sprintf("The query returned %d rows. A prose summary is unavailable right now.", result.TotalRows),
		Degraded: true,
	}
}
