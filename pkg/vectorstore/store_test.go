package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	s := NewStore(gdb)
	s.ready["table_schemas"] = true // skip the migration round-trip
	return s, mock
}

func TestSchemaEmbeddingModelMapping(t *testing.T) {
	rec := SchemaEmbedding{Table: "dbo.Employees"}

	assert.Equal(t, "schema_embeddings", rec.TableName())
	assert.Equal(t, "dbo.Employees", rec.Table)
}

func TestQueryScansNearestFirst(t *testing.T) {
	s, mock := newMockStore(t)

	collection, err := s.GetOrCreateCollection(context.Background(), "table_schemas")
	assert.NoError(t, err)

	mock.ExpectQuery("SELECT schema_embeddings").WillReturnRows(
		sqlmock.NewRows([]string{"id", "collection", "table_name", "document", "distance"}).
			AddRow("3f1f4cb1-97b4-4a6e-9d2e-0fb53c2a7f10", "table_schemas", "dbo.Employees", "employees doc", 0.12).
			AddRow("9a2b4cb1-97b4-4a6e-9d2e-0fb53c2a7f11", "table_schemas", "dbo.Orders", "orders doc", 0.58),
	)

	docs, err := collection.Query(context.Background(), []float32{0.1, 0.2, 0.3}, 3)

	assert.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "dbo.Employees", docs[0].Table)
	assert.Equal(t, "employees doc", docs[0].Document)
	assert.Equal(t, 0.12, docs[0].Distance)
	assert.Equal(t, "dbo.Orders", docs[1].Table)
}

func TestCountScopedToCollection(t *testing.T) {
	s, mock := newMockStore(t)

	collection, err := s.GetOrCreateCollection(context.Background(), "table_schemas")
	assert.NoError(t, err)

	mock.ExpectQuery("SELECT count").WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(int64(7)),
	)

	count, err := collection.Count(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "missing relation means index never built",
			err:  errors.New(`pq: relation "schema_embeddings" does not exist`),
			want: ErrCollectionNotBuilt,
		},
		{
			name: "connection refused means store down",
			err:  errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			want: ErrStoreUnreachable,
		},
		{
			name: "timeout means store down",
			err:  errors.New("read tcp: i/o timeout"),
			want: ErrStoreUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v in chain", tt.err, got, tt.want)
			}
		})
	}

	t.Run("unrecognized errors pass through", func(t *testing.T) {
		plain := errors.New("pq: division by zero")
		got := classify(plain)
		if errors.Is(got, ErrCollectionNotBuilt) || errors.Is(got, ErrStoreUnreachable) {
			t.Errorf("classify(%v) = %v, want untranslated", plain, got)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if got := classify(nil); got != nil {
			t.Errorf("classify(nil) = %v", got)
		}
	})
}
