package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrStoreUnreachable means the vector store could not be reached at all.
	ErrStoreUnreachable = errors.New("vector store unreachable")
	// ErrCollectionNotBuilt means the collection has not been indexed yet.
	ErrCollectionNotBuilt = errors.New("vector collection not built")
)

// SchemaEmbedding is one indexed table-schema document plus its vector.
// Table holds the documented table's name; the backing column stays
// table_name so the unique index and raw queries keep their shape.
type SchemaEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection     string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_collection_table"`
	Table          string          `gorm:"column:table_name;type:varchar(256);not null;uniqueIndex:idx_collection_table"`
	Document       string          `gorm:"type:text"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text and text-embedding-004 both emit 768 dims
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (SchemaEmbedding) TableName() string {
	return "schema_embeddings"
}

// ScoredDocument is a retrieval hit. Distance is cosine distance (lower is closer).
type ScoredDocument struct {
	ID       string
	Table    string
	Document string
	Metadata datatypes.JSON
	Distance float64
}

// Store wraps the pgvector-backed index. Collection handles are created
// lazily and cached after the first successful migration.
type Store struct {
	db    *gorm.DB
	mu    sync.Mutex
	ready map[string]bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		ready: make(map[string]bool),
	}
}

// Collection is a handle scoped to one logical collection name.
type Collection struct {
	store *Store
	Name  string
}

// GetOrCreateCollection ensures the backing table exists. Idempotent; the
// migration runs at most once per process per name.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready[name] {
		if err := s.db.WithContext(ctx).AutoMigrate(&SchemaEmbedding{}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
		}
		s.ready[name] = true
	}

	return &Collection{store: s, Name: name}, nil
}

// Upsert inserts or replaces the document for a table name.
func (c *Collection) Upsert(ctx context.Context, tableName, document string, metadata datatypes.JSON, embedding []float32) error {
	db := c.store.db.WithContext(ctx)

	var existing SchemaEmbedding
	err := db.Where("collection = ? AND table_name = ?", c.Name, tableName).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return classify(err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec := SchemaEmbedding{
			Id:             uuid.New(),
			Collection:     c.Name,
			Table:          tableName,
			Document:       document,
			Metadata:       metadata,
			EmbeddingValue: pgvector.NewVector(embedding),
		}
		if err := db.Create(&rec).Error; err != nil {
			return classify(err)
		}
		return nil
	}

	existing.Document = document
	existing.Metadata = metadata
	existing.EmbeddingValue = pgvector.NewVector(embedding)
	if err := db.Save(&existing).Error; err != nil {
		return classify(err)
	}
	return nil
}

// Query returns up to topK nearest documents, nearest first.
func (c *Collection) Query(ctx context.Context, embedding []float32, topK int) ([]ScoredDocument, error) {
	if topK <= 0 {
		topK = 3
	}

	type row struct {
		SchemaEmbedding
		Distance float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	// pgvector cosine distance: embedding_value <=> query. Ascending order
	// keeps the nearest-first invariant.
	err := c.store.db.WithContext(ctx).
		Table("schema_embeddings").
		Select("schema_embeddings.*, (embedding_value <=> ?) as distance", queryVector).
		Where("collection = ?", c.Name).
		Order("distance ASC").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}

	docs := make([]ScoredDocument, len(rows))
	for i, r := range rows {
		docs[i] = ScoredDocument{
			ID:       r.Id.String(),
			Table:    r.Table,
			Document: r.Document,
			Metadata: r.Metadata,
			Distance: r.Distance,
		}
	}
	return docs, nil
}

// Count returns the number of indexed documents in the collection.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	var count int64
	err := c.store.db.WithContext(ctx).
		Model(&SchemaEmbedding{}).
		Where("collection = ?", c.Name).
		Count(&count).Error
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// classify maps driver errors into the two user-actionable kinds callers
// can distinguish: store down vs index never built.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation"):
		return fmt.Errorf("%w: %v", ErrCollectionNotBuilt, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	default:
		return err
	}
}
