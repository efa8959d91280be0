package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"askdb-be/internal/apperror"
	"askdb-be/internal/dto"
	"askdb-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// newValidationService wires only what the pre-pipeline paths touch. The
// pipeline components stay nil: reaching one of them in these tests is a bug.
func newValidationService(sessionRepo *memory.SessionRepository, cache *memory.ResponseCache) IAskService {
	return NewAskService(nil, nil, nil, nil, nil, sessionRepo, cache, nopLogger{}, 500)
}

func TestAskRejectsInvalidQuestions(t *testing.T) {
	svc := newValidationService(
		memory.NewSessionRepository(time.Hour, 10),
		memory.NewResponseCache(time.Hour, 10),
	)

	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t "},
		{"over length limit", strings.Repeat("a", 501)},
		{"drop table", "please drop table Employees"},
		{"delete from", "delete from Orders where 1=1"},
		{"insert into", "insert into Users values (1)"},
		{"truncate", "truncate table Logs for me"},
		{"stored procedure", "run xp_cmdshell 'dir'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: tt.question})

			assert.Error(t, err)
			assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
		})
	}
}

func TestAskAcceptsQuestionsMentioningDataCasually(t *testing.T) {
	// Questions about updates or creation dates are legitimate; only
	// SQL-shaped mutations are rejected. A nil retriever panicking would
	// fail this test, so stop at the cache with a prepared hit.
	cache := memory.NewResponseCache(time.Hour, 10)
	cache.Set("when was the newest record created?", &memory.CachedResponse{Answer: "Yesterday."})

	svc := newValidationService(memory.NewSessionRepository(time.Hour, 10), cache)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "when was the newest record created?"})

	assert.NoError(t, err)
	assert.Equal(t, "Yesterday.", res.Answer)
}

func TestAskCacheHitShortCircuits(t *testing.T) {
	sessionRepo := memory.NewSessionRepository(time.Hour, 10)
	cache := memory.NewResponseCache(time.Hour, 10)
	cache.Set("how many employees?", &memory.CachedResponse{
		Answer:  "There are 42 employees.",
		Sql:     "SELECT COUNT(*) FROM dbo.Employees;",
		RawData: []map[string]interface{}{{"count": 42}},
	})

	svc := newValidationService(sessionRepo, cache)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "How Many Employees?"})

	assert.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "There are 42 employees.", res.Answer)
	assert.Equal(t, "SELECT COUNT(*) FROM dbo.Employees;", res.GeneratedSql)
	assert.NotEmpty(t, res.SessionId, "a session id must be minted when absent")

	// The cached turn still lands in conversation history.
	sess, found := sessionRepo.Get(res.SessionId)
	assert.True(t, found)
	assert.Len(t, sess.Turns, 2)
}

func TestAskConcurrentRequestsSameSession(t *testing.T) {
	sessionRepo := memory.NewSessionRepository(time.Hour, 50)
	cache := memory.NewResponseCache(time.Hour, 10)
	cache.Set("q", &memory.CachedResponse{Answer: "a"})

	svc := newValidationService(sessionRepo, cache)

	sessionId := "3f1f4cb1-97b4-4a6e-9d2e-0fb53c2a7f10"
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "q", SessionId: sessionId})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, found := sessionRepo.Get(sessionId)
	assert.True(t, found)
	assert.Equal(t, 0, len(sess.Turns)%2, "concurrent requests must never tear a turn pair")
}

func TestAskCacheHitKeepsProvidedSession(t *testing.T) {
	sessionRepo := memory.NewSessionRepository(time.Hour, 10)
	cache := memory.NewResponseCache(time.Hour, 10)
	cache.Set("q", &memory.CachedResponse{Answer: "a"})

	svc := newValidationService(sessionRepo, cache)

	sessionId := "3f1f4cb1-97b4-4a6e-9d2e-0fb53c2a7f10"
	res, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "q", SessionId: sessionId})

	assert.NoError(t, err)
	assert.Equal(t, sessionId, res.SessionId)

	_, found := sessionRepo.Get(sessionId)
	assert.True(t, found)
}
