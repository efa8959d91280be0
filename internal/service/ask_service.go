package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"askdb-be/internal/apperror"
	"askdb-be/internal/constant"
	"askdb-be/internal/dto"
	"askdb-be/internal/pkg/logger"
	"askdb-be/internal/repository/memory"
	"askdb-be/pkg/rag/execute"
	"askdb-be/pkg/rag/retrieve"
	"askdb-be/pkg/rag/rewrite"
	"askdb-be/pkg/rag/sqlgen"
	"askdb-be/pkg/rag/summarize"
	"askdb-be/pkg/store"

	"github.com/google/uuid"
)

// Pipeline states. Each transition is one component call; failure at any
// state short-circuits with that component's error kind. The orchestrator
// retries nothing itself — every component owns its own retry policy.
const (
	StateSessionResolved = "SessionResolved"
	StateRewritten       = "Rewritten"
	StateSchemaRetrieved = "SchemaRetrieved"
	StateSqlGenerated    = "SqlGenerated"
	StateExecuted        = "Executed"
	StateSummarized      = "Summarized"
	StateResponded       = "Responded"
)

// IAskService defines the question-answering service interface
type IAskService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	CacheStats() memory.CacheStats
}

type askService struct {
	rewriter      *rewrite.Rewriter
	retriever     *retrieve.Retriever
	generator     *sqlgen.Generator
	executor      *execute.Executor
	summarizer    *summarize.Summarizer
	sessionRepo   *memory.SessionRepository
	responseCache *memory.ResponseCache
	log           logger.ILogger

	maxQuestionLen int
}

func NewAskService(
	rewriter *rewrite.Rewriter,
	retriever *retrieve.Retriever,
	generator *sqlgen.Generator,
	executor *execute.Executor,
	summarizer *summarize.Summarizer,
	sessionRepo *memory.SessionRepository,
	responseCache *memory.ResponseCache,
	log logger.ILogger,
	maxQuestionLen int,
) IAskService {
	return &askService{
		rewriter:       rewriter,
		retriever:      retriever,
		generator:      generator,
		executor:       executor,
		summarizer:     summarizer,
		sessionRepo:    sessionRepo,
		responseCache:  responseCache,
		log:            log,
		maxQuestionLen: maxQuestionLen,
	}
}

// harmfulPatterns rejects questions that smuggle SQL mutations in natural
// language, before any external call is made.
var harmfulPatterns = regexp.MustCompile(`(?i)\b(drop\s+(table|database)|delete\s+from|insert\s+into|update\s+\w+\s+set|truncate\s+table|alter\s+table|create\s+(table|database)|exec(ute)?\s+|xp_cmdshell|sp_executesql)`)

// Ask runs the full pipeline for one question.
func (s *askService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	started := time.Now()

	question := strings.TrimSpace(request.Question)
	if err := s.validateQuestion(question); err != nil {
		return nil, err
	}

	// SessionResolved
	sessionId := request.SessionId
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	// Cache hit short-circuits all five stages.
	if cached, found := s.responseCache.Get(question); found {
		s.log.Info("pipeline", "cache hit", map[string]interface{}{
			"session_id": sessionId,
		})
		s.recordTurn(sessionId, question, cached.Answer)
		return &dto.AskResponse{
			Answer:       cached.Answer,
			GeneratedSql: cached.Sql,
			RawData:      cached.RawData,
			SessionId:    sessionId,
			Cached:       true,
			Timings:      dto.StageTimings{TotalMs: time.Since(started).Milliseconds()},
		}, nil
	}

	history := s.loadHistory(sessionId)
	s.logState(sessionId, StateSessionResolved)

	// Rewritten (degrades silently, never fails the pipeline)
	rewriteStart := time.Now()
	standalone := s.rewriter.Rewrite(ctx, question, history)
	rewriteMs := time.Since(rewriteStart).Milliseconds()
	s.logState(sessionId, StateRewritten)

	// SchemaRetrieved
	retrieveStart := time.Now()
	retrieval, err := s.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return nil, err
	}
	retrievalMs := time.Since(retrieveStart).Milliseconds()
	s.logState(sessionId, StateSchemaRetrieved)

	// SqlGenerated
	sqlGenStart := time.Now()
	generatedSql, err := s.generator.Generate(ctx, standalone, retrieval.Context)
	if err != nil {
		return nil, err
	}
	sqlGenMs := time.Since(sqlGenStart).Milliseconds()
	s.logState(sessionId, StateSqlGenerated)

	// Executed
	executeStart := time.Now()
	result, err := s.executor.Execute(ctx, generatedSql)
	if err != nil {
		return nil, err
	}
	executeMs := time.Since(executeStart).Milliseconds()
	s.logState(sessionId, StateExecuted)

	// Summarized (degrades to a deterministic sentence, never fails)
	summaryStart := time.Now()
	summary := s.summarizer.Summarize(ctx, question, result)
	summaryMs := time.Since(summaryStart).Milliseconds()
	s.logState(sessionId, StateSummarized)

	// Persist conversation state and memoize, then respond.
	s.recordTurn(sessionId, question, summary.Answer)
	s.responseCache.Set(question, &memory.CachedResponse{
		Answer:    summary.Answer,
		Sql:       generatedSql,
		RawData:   result.Rows,
		CreatedAt: time.Now(),
	})
	s.logState(sessionId, StateResponded)

	return &dto.AskResponse{
		Answer:       summary.Answer,
		GeneratedSql: generatedSql,
		RawData:      result.Rows,
		SessionId:    sessionId,
		Cached:       false,
		Degraded:     summary.Degraded,
		Timings: dto.StageTimings{
			RewriteMs:   rewriteMs,
			RetrievalMs: retrievalMs,
			SqlGenMs:    sqlGenMs,
			ExecuteMs:   executeMs,
			SummaryMs:   summaryMs,
			TotalMs:     time.Since(started).Milliseconds(),
		},
	}, nil
}

func (s *askService) CacheStats() memory.CacheStats {
	return s.responseCache.Stats()
}

func (s *askService) validateQuestion(question string) error {
	if question == "" {
		return apperror.New(apperror.KindInvalidInput, "question must not be empty")
	}
	if s.maxQuestionLen > 0 && len(question) > s.maxQuestionLen {
		return apperror.New(apperror.KindInvalidInput, "question exceeds the maximum allowed length")
	}
	if harmfulPatterns.MatchString(question) {
		return apperror.New(apperror.KindInvalidInput, "question contains a disallowed pattern")
	}
	return nil
}

func (s *askService) loadHistory(sessionId string) []store.Turn {
	if sess, found := s.sessionRepo.Get(sessionId); found {
		return sess.Turns
	}
	return nil
}

// recordTurn appends the (question, answer) pair and persists the session.
// The repository trims FIFO to the configured pair cap on save.
func (s *askService) recordTurn(sessionId, question, answer string) {
	sess, found := s.sessionRepo.Get(sessionId)
	if !found {
		sess = &store.Session{
			ID:        sessionId,
			CreatedAt: time.Now(),
		}
	}
	sess.Turns = append(sess.Turns,
		store.Turn{Role: constant.TurnRoleUser, Content: question},
		store.Turn{Role: constant.TurnRoleAssistant, Content: answer},
	)
	s.sessionRepo.Save(sess)
}

func (s *askService) logState(sessionId, state string) {
	s.log.Debug("pipeline", "state reached", map[string]interface{}{
		"session_id": sessionId,
		"state":      state,
	})
}
