package retrieve

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"askdb-be/internal/apperror"
	"askdb-be/pkg/vectorstore"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func TestRetrieveRejectsEmptyQuestion(t *testing.T) {
	// Validation happens before any store or embedder call; nil deps
	// guarantee the test blows up if that ordering regresses.
	r := NewRetriever(nil, nil, nopLogger{}, 3, time.Second)

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := r.Retrieve(context.Background(), question)
		if err == nil {
			t.Fatalf("Retrieve(%q) = nil, want error", question)
		}
		if kind := apperror.KindOf(err); kind != apperror.KindInvalidInput {
			t.Errorf("Retrieve(%q) kind = %v, want %v", question, kind, apperror.KindInvalidInput)
		}
	}
}

func TestTranslateEmbedErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason apperror.Reason
	}{
		{
			name:       "deadline expiry is a timeout",
			err:        fmt.Errorf("embed request: %w", context.DeadlineExceeded),
			wantReason: apperror.ReasonTimeout,
		},
		{
			name:       "cancellation is a timeout",
			err:        context.Canceled,
			wantReason: apperror.ReasonTimeout,
		},
		{
			name:       "transport failure is connectivity",
			err:        errors.New("dial tcp 127.0.0.1:11434: connection refused"),
			wantReason: apperror.ReasonConnectivity,
		},
		{
			name:       "provider 5xx is connectivity",
			err:        errors.New("ollama embedding error: status 503"),
			wantReason: apperror.ReasonConnectivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateEmbedErr(tt.err)

			if kind := apperror.KindOf(got); kind != apperror.KindExecutionFailed {
				t.Errorf("kind = %v, want %v", kind, apperror.KindExecutionFailed)
			}
			// Provider faults must never masquerade as an empty result.
			if kind := apperror.KindOf(got); kind == apperror.KindNoRelevantSchema {
				t.Error("embed failure mapped to NoRelevantSchema")
			}
			if reason := apperror.ReasonOf(got); reason != tt.wantReason {
				t.Errorf("reason = %v, want %v", reason, tt.wantReason)
			}
			if !errors.Is(got, tt.err) {
				t.Error("underlying error lost from the chain")
			}
		})
	}
}

func TestTranslateStoreErr(t *testing.T) {
	r := NewRetriever(nil, nil, nopLogger{}, 3, time.Second)

	tests := []struct {
		name       string
		err        error
		wantKind   apperror.Kind
		wantReason apperror.Reason
	}{
		{
			name:     "index never built",
			err:      fmt.Errorf("%w: relation missing", vectorstore.ErrCollectionNotBuilt),
			wantKind: apperror.KindNoRelevantSchema,
		},
		{
			name:       "store unreachable",
			err:        fmt.Errorf("%w: connection refused", vectorstore.ErrStoreUnreachable),
			wantKind:   apperror.KindExecutionFailed,
			wantReason: apperror.ReasonConnectivity,
		},
		{
			name:     "anything else is internal",
			err:      errors.New("pq: division by zero"),
			wantKind: apperror.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.translateStoreErr(tt.err)

			if kind := apperror.KindOf(got); kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", kind, tt.wantKind)
			}
			if reason := apperror.ReasonOf(got); reason != tt.wantReason {
				t.Errorf("reason = %v, want %v", reason, tt.wantReason)
			}
		})
	}
}
