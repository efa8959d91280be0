package execute

import (
	"context"
	"strings"
	"time"

	"askdb-be/internal/apperror"
	"askdb-be/internal/pkg/logger"

	"gorm.io/gorm"
)

// QueryResult is an ordered row set plus truncation metadata. TotalRows is
// the pre-truncation count; Truncated marks that rows beyond the cap were
// dropped as backpressure, not as an error.
type QueryResult struct {
	Columns   []string
	Rows      []map[string]interface{}
	Truncated bool
	TotalRows int
}

// Executor validates and runs SELECT statements over the pooled connection.
type Executor struct {
	db      *gorm.DB
	log     logger.ILogger
	maxRows int
	timeout time.Duration
}

func NewExecutor(db *gorm.DB, log logger.ILogger, maxRows int, timeout time.Duration) *Executor {
	return &Executor{
		db:      db,
		log:     log,
		maxRows: maxRows,
		timeout: timeout,
	}
}

// Execute runs sql after the read-only gate. The context deadline bounds the
// call on both sides: the driver cancels server-side and the local wait stops
// when the deadline elapses, whichever fires first.
func (e *Executor) Execute(ctx context.Context, sql string) (*QueryResult, error) {
	if err := ValidateReadOnly(sql); err != nil {
		e.log.Warn("executor", "query rejected by safety gate", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, apperror.Wrap(apperror.KindUnsafeQueryRejected, "generated query was rejected by the safety gate", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.db.WithContext(execCtx).Raw(sql).Rows()
	if err != nil {
		return nil, e.translate(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, e.translate(err)
	}

	result := &QueryResult{Columns: columns}
	for rows.Next() {
		result.TotalRows++
		if result.TotalRows > e.maxRows {
			result.Truncated = true
			continue // keep counting, stop keeping
		}

		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, e.translate(err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.translate(err)
	}

	if result.Truncated {
		e.log.Info("executor", "result set truncated to row cap", map[string]interface{}{
			"cap":        e.maxRows,
			"total_rows": result.TotalRows,
		})
	}

	return result, nil
}

// translate maps driver failures into a small taxonomy so callers get
// actionable messages without raw driver internals.
func (e *Executor) translate(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context deadline exceeded"),
		strings.Contains(msg, "statement timeout"),
		strings.Contains(msg, "canceling statement due to user request"):
		return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonTimeout, "query timed out", err)
	case strings.Contains(msg, "password authentication failed"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "permission denied"):
		return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonAuthentication, "database authentication failed", err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "broken pipe"):
		return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonConnectivity, "database unreachable", err)
	case strings.Contains(msg, "does not exist"),
		strings.Contains(msg, "invalid column"),
		strings.Contains(msg, "invalid object name"),
		strings.Contains(msg, "undefined"):
		return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonInvalidIdentifier, "query referenced an unknown table or column", err)
	default:
		return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonNone, "query execution failed", err)
	}
}
