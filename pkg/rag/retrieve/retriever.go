package retrieve

import (
	"context"
	"errors"
	"strings"
	"time"

	"askdb-be/internal/apperror"
	"askdb-be/internal/constant"
	"askdb-be/internal/pkg/logger"
	"askdb-be/pkg/embedding"
	"askdb-be/pkg/vectorstore"
)

// CollectionName is the single index holding table-schema documents.
const CollectionName = "table_schemas"

// Result is the retrieval output: schema documents joined into one context
// block, nearest first, plus the raw hits for metadata.
type Result struct {
	Context string
	Docs    []vectorstore.ScoredDocument
}

// Retriever finds the schema documents most relevant to a question.
type Retriever struct {
	embedder     embedding.EmbeddingProvider
	store        *vectorstore.Store
	log          logger.ILogger
	topK         int
	embedTimeout time.Duration
}

func NewRetriever(embedder embedding.EmbeddingProvider, store *vectorstore.Store, log logger.ILogger, topK int, embedTimeout time.Duration) *Retriever {
	return &Retriever{
		embedder:     embedder,
		store:        store,
		log:          log,
		topK:         topK,
		embedTimeout: embedTimeout,
	}
}

// Retrieve embeds the question and queries the index for the top-K nearest
// schema documents. An empty question is a contract violation, not a
// retryable error. Zero matches surface as NoRelevantSchema.
func (r *Retriever) Retrieve(ctx context.Context, question string) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "question must not be empty")
	}

	collection, err := r.store.GetOrCreateCollection(ctx, CollectionName)
	if err != nil {
		return nil, r.translateStoreErr(err)
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	defer cancel()

	embeddingRes, err := r.embedder.Generate(embedCtx, question, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, translateEmbedErr(err)
	}

	docs, err := collection.Query(ctx, embeddingRes.Embedding.Values, r.topK)
	if err != nil {
		return nil, r.translateStoreErr(err)
	}

	if len(docs) == 0 {
		return nil, apperror.New(apperror.KindNoRelevantSchema, "no relevant schema found for this question")
	}

	r.log.Debug("retriever", "schema documents retrieved", map[string]interface{}{
		"count":   len(docs),
		"nearest": docs[0].Distance,
	})

	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Document
	}

	return &Result{
		Context: strings.Join(parts, constant.SchemaDocSeparator),
		Docs:    docs,
	}, nil
}

// translateEmbedErr maps embedding-provider failures. These are transient
// infrastructure faults, never "nothing matched": NoRelevantSchema is
// reserved for an empty result set.
func translateEmbedErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonTimeout, "question embedding timed out", err)
	}
	return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonConnectivity, "embedding provider unavailable", err)
}

// translateStoreErr maps store failures into distinguishable, user-actionable
// kinds: unreachable store vs index never built.
func (r *Retriever) translateStoreErr(err error) error {
	switch {
	case errors.Is(err, vectorstore.ErrCollectionNotBuilt):
		return apperror.Wrap(apperror.KindNoRelevantSchema, "schema index has not been built yet", err)
	case errors.Is(err, vectorstore.ErrStoreUnreachable):
		return apperror.WithReason(apperror.KindExecutionFailed, apperror.ReasonConnectivity, "schema index store unreachable", err)
	default:
		return apperror.Wrap(apperror.KindInternal, "schema retrieval failed", err)
	}
}
