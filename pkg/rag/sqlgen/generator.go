package sqlgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"askdb-be/internal/apperror"
	"askdb-be/internal/constant"
	"askdb-be/internal/pkg/logger"
	"askdb-be/pkg/llm"
	"askdb-be/pkg/rag/truncate"
	"askdb-be/pkg/retry"
)

// Generator turns a standalone question plus schema context into a single
// validated SELECT statement. Generation and execution are distinct trust
// domains: nothing produced here is executed without the executor's own gate.
type Generator struct {
	llmProvider llm.LLMProvider
	log         logger.ILogger
	ctxPolicy   truncate.CharPolicy
	policy      retry.Policy
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger, schemaCtxMaxChars, maxAttempts int, perAttemptTimeout time.Duration) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		log:         log,
		ctxPolicy:   truncate.CharPolicy{MaxChars: schemaCtxMaxChars},
		policy: retry.Policy{
			MaxAttempts:       maxAttempts,
			Backoff:           retry.ExponentialBackoff(1 * time.Second),
			PerAttemptTimeout: perAttemptTimeout,
		},
	}
}

// Generate returns a cleaned SELECT statement ending in ";". Malformed output
// and transport failures alike are retried with exponential backoff; after
// exhaustion the last underlying error is wrapped in SqlGenerationFailed.
func (g *Generator) Generate(ctx context.Context, question, schemaContext string) (string, error) {
	schemaContext, truncated := g.ctxPolicy.Apply(schemaContext)
	if truncated {
		g.log.Debug("sqlgen", "schema context truncated to budget", map[string]interface{}{
			"max_chars": g.ctxPolicy.MaxChars,
		})
	}

	prompt := fmt.Sprintf(constant.GenerateSqlSystemPromptV1, schemaContext, question)

	var sql string
	err := g.policy.Do(ctx, func(attemptCtx context.Context) error {
		raw, err := g.llmProvider.Generate(attemptCtx, prompt, llm.WithTemperature(0))
		if err != nil {
			return err
		}

		cleaned, err := CleanOutput(raw)
		if err != nil {
			return err
		}
		sql = cleaned
		return nil
	})
	if err != nil {
		return "", apperror.Wrap(apperror.KindSqlGenerationFailed, "could not generate a valid SQL query for this question", err)
	}

	return sql, nil
}

// CleanOutput strips code fences and language tags the model may have added,
// verifies the SELECT shape, and appends the statement terminator if absent.
func CleanOutput(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Strip markdown fences: ```sql ... ``` or ``` ... ```
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```SQL")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	// A bare language tag may survive on its own line
	if strings.HasPrefix(strings.ToLower(s), "sql\n") {
		s = strings.TrimSpace(s[4:])
	}

	if s == "" {
		return "", fmt.Errorf("model returned empty output")
	}

	if strings.EqualFold(strings.TrimSuffix(s, ";"), constant.UnanswerableSentinel) {
		return "", fmt.Errorf("model declared the question unanswerable from the given schema")
	}

	if !strings.HasPrefix(strings.ToUpper(s), "SELECT") {
		return "", fmt.Errorf("model output is not a SELECT statement: %q", head(s, 80))
	}

	if !strings.HasSuffix(s, ";") {
		s += ";"
	}

	return s, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
