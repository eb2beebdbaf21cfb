package mssqlvec

import (
	"context"
	"fmt"
	"log"
	"reflect"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
	"github.com/rzpsarthak13/mssqlvec/internal/filtersql"
	"github.com/rzpsarthak13/mssqlvec/internal/reader"
	"github.com/rzpsarthak13/mssqlvec/internal/record"
	"github.com/rzpsarthak13/mssqlvec/internal/sqlgen"
	"github.com/rzpsarthak13/mssqlvec/pkg/embed"
	"github.com/rzpsarthak13/mssqlvec/pkg/filter"
	"github.com/rzpsarthak13/mssqlvec/pkg/schema"
)

// DefaultTop is the result count used when search options leave Top unset.
const DefaultTop = 3

// Collection is a typed handle on one vector store table. T is the record
// struct; its schema comes from `mssqlvec` struct tags unless an explicit
// definition is supplied. A Collection is safe for concurrent use.
type Collection[T any] struct {
	store      *Store
	name       string
	schemaName string
	tableName  string
	model      *schema.Model
	mapper     *record.Mapper
	embedder   embed.Embedder
}

type collectionOptions struct {
	definition *schema.Definition
	embedder   embed.Embedder
}

// CollectionOption customizes a collection.
type CollectionOption func(*collectionOptions)

// WithDefinition supplies an explicit schema definition instead of deriving
// one from T's struct tags.
func WithDefinition(def schema.Definition) CollectionOption {
	return func(o *collectionOptions) { o.definition = &def }
}

// WithEmbedder attaches a text-embedding provider, enabling SearchText.
func WithEmbedder(e embed.Embedder) CollectionOption {
	return func(o *collectionOptions) { o.embedder = e }
}

// NewCollection binds a typed collection to store. name may carry an
// explicit schema as "schema.table"; otherwise the store's default schema
// applies. No database work happens here; call EnsureTable to create the
// backing table.
func NewCollection[T any](store *Store, name string, opts ...CollectionOption) (*Collection[T], error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	var options collectionOptions
	for _, opt := range opts {
		opt(&options)
	}

	recordType := reflect.TypeOf((*T)(nil)).Elem()
	var model *schema.Model
	var err error
	if options.definition != nil {
		model, err = schema.Build(recordType, *options.definition)
	} else {
		model, err = schema.FromType(recordType)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid collection model: %w", err)
	}

	schemaName, tableName := sqlgen.SplitCollectionName(name, store.defaultSchema)
	return &Collection[T]{
		store:      store,
		name:       name,
		schemaName: schemaName,
		tableName:  tableName,
		model:      model,
		mapper:     record.NewMapper(model),
		embedder:   options.embedder,
	}, nil
}

// Name returns the collection name the collection was opened with.
func (c *Collection[T]) Name() string { return c.name }

// Model returns the collection's validated schema model.
func (c *Collection[T]) Model() *schema.Model { return c.model }

// EnsureTable creates the backing table if it does not exist yet.
func (c *Collection[T]) EnsureTable(ctx context.Context) error {
	return c.createTable(ctx, true)
}

// CreateTable creates the backing table, failing if it already exists.
func (c *Collection[T]) CreateTable(ctx context.Context) error {
	return c.createTable(ctx, false)
}

func (c *Collection[T]) createTable(ctx context.Context, ifNotExists bool) error {
	cmd, err := sqlgen.BuildCreateTable(c.model, c.schemaName, c.tableName, ifNotExists)
	if err != nil {
		return translateError("create table", c.name, err)
	}
	log.Printf("[COLLECTION] Creating table [%s].[%s] (if not exists: %v)", c.schemaName, c.tableName, ifNotExists)
	if _, err := c.store.db.Exec(ctx, cmd.SQL(), cmd.Args()...); err != nil {
		return translateError("create table", c.name, err)
	}
	return nil
}

// DropTable drops the backing table. Dropping a missing table is a no-op.
func (c *Collection[T]) DropTable(ctx context.Context) error {
	cmd := sqlgen.BuildDropTable(c.schemaName, c.tableName)
	log.Printf("[COLLECTION] Dropping table [%s].[%s]", c.schemaName, c.tableName)
	if _, err := c.store.db.Exec(ctx, cmd.SQL(), cmd.Args()...); err != nil {
		return translateError("drop table", c.name, err)
	}
	return nil
}

// TableExists reports whether the backing table exists.
func (c *Collection[T]) TableExists(ctx context.Context) (bool, error) {
	cmd := sqlgen.BuildTableExists(c.schemaName, c.tableName)
	rows, err := c.store.db.Query(ctx, cmd.SQL(), cmd.Args()...)
	if err != nil {
		return false, translateError("table exists", c.name, err)
	}
	defer rows.Close()
	exists := rows.Next()
	if err := rows.Err(); err != nil {
		return false, translateError("table exists", c.name, err)
	}
	return exists, nil
}

// Upsert inserts or updates records and returns their keys in batch order.
// Batches wider than the parameter budget are split into chunks that all run
// inside one transaction; either the whole batch lands or none of it does.
// An empty batch is a no-op.
func (c *Collection[T]) Upsert(ctx context.Context, records ...*T) ([]interface{}, error) {
	return c.UpsertWithVectors(ctx, records, nil)
}

// UpsertWithVectors is Upsert with per-record embedding overrides. vectors
// must be nil or have one entry per record; each entry maps vector property
// names to embeddings that replace the record's own and are length-checked
// against the declared dimensions.
func (c *Collection[T]) UpsertWithVectors(ctx context.Context, records []*T, vectors []map[string][]float32) ([]interface{}, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if vectors != nil && len(vectors) != len(records) {
		return nil, translateError("upsert", c.name,
			fmt.Errorf("got %d vector overrides for %d records", len(vectors), len(records)))
	}

	rows := make([]*core.StorageRow, len(records))
	for i, rec := range records {
		var overrides map[string][]float32
		if vectors != nil {
			overrides = vectors[i]
		}
		row, err := c.mapper.ToStorage(rec, overrides)
		if err != nil {
			return nil, translateError("upsert", c.name, err)
		}
		rows[i] = row
	}

	keys := make([]interface{}, 0, len(records))
	_, err := c.store.orchestrator.ExecuteChunked(ctx, c.store.db, len(rows), c.model.PropertyCount(),
		func(tx core.Transaction, start, end int) (int, error) {
			cmd, err := sqlgen.BuildMerge(c.model, c.schemaName, c.tableName, rows[start:end])
			if err != nil {
				return 0, err
			}
			result, err := tx.Query(ctx, cmd.SQL(), cmd.Args()...)
			if err != nil {
				return 0, err
			}
			defer result.Close()
			n := 0
			for result.Next() {
				var raw interface{}
				if err := result.Scan(&raw); err != nil {
					return 0, fmt.Errorf("failed to scan upserted key: %w", err)
				}
				key, err := c.mapper.KeyFromStorage(raw)
				if err != nil {
					return 0, err
				}
				keys = append(keys, key)
				n++
			}
			return n, result.Err()
		})
	if err != nil {
		return nil, translateError("upsert", c.name, err)
	}
	return keys, nil
}

// GetOptions controls record reads.
type GetOptions struct {
	// IncludeVectors also loads the embedding columns. Off by default
	// since embeddings dominate row size.
	IncludeVectors bool
}

// Get loads one record by key. Returns ErrNotFound (wrapped) when no record
// has the key.
func (c *Collection[T]) Get(ctx context.Context, key interface{}, opts *GetOptions) (*T, error) {
	records, err := c.GetBatch(ctx, []interface{}{key}, opts)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, translateError("get", c.name, ErrNotFound)
	}
	return records[0], nil
}

// GetBatch loads the records for a batch of keys. Keys without a record are
// skipped; the result carries only the records found, in database return
// order. An empty key batch is a no-op.
func (c *Collection[T]) GetBatch(ctx context.Context, keys []interface{}, opts *GetOptions) ([]*T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	includeVectors := opts != nil && opts.IncludeVectors
	storageKeys := make([]interface{}, len(keys))
	for i, key := range keys {
		storageKeys[i] = c.mapper.KeyToStorage(key)
	}

	var records []*T
	vectorCols := c.model.VectorStorageNames()
	err := c.store.orchestrator.QueryChunked(ctx, len(storageKeys), 1, func(start, end int) error {
		cmd, err := sqlgen.BuildSelect(c.model, c.schemaName, c.tableName, storageKeys[start:end], includeVectors)
		if err != nil {
			return err
		}
		rows, err := c.store.db.Query(ctx, cmd.SQL(), cmd.Args()...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			row, err := reader.Scan(rows, vectorCols)
			if err != nil {
				return err
			}
			rec, err := c.mapper.FromStorage(row, includeVectors)
			if err != nil {
				return err
			}
			records = append(records, rec.(*T))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, translateError("get", c.name, err)
	}
	return records, nil
}

// Delete removes the records for a batch of keys. Keys without a record are
// skipped silently. Large batches run chunked inside one transaction; the
// returned count is the number of rows actually deleted. An empty batch is
// a no-op.
func (c *Collection[T]) Delete(ctx context.Context, keys ...interface{}) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	storageKeys := make([]interface{}, len(keys))
	for i, key := range keys {
		storageKeys[i] = c.mapper.KeyToStorage(key)
	}

	deleted, err := c.store.orchestrator.ExecuteChunked(ctx, c.store.db, len(storageKeys), 1,
		func(tx core.Transaction, start, end int) (int, error) {
			cmd, err := sqlgen.BuildDelete(c.model, c.schemaName, c.tableName, storageKeys[start:end])
			if err != nil {
				return 0, err
			}
			result, err := tx.Exec(ctx, cmd.SQL(), cmd.Args()...)
			if err != nil {
				return 0, err
			}
			n, _ := result.RowsAffected()
			return int(n), nil
		})
	if err != nil {
		return 0, translateError("delete", c.name, err)
	}
	return deleted, nil
}

// SearchOptions controls nearest-neighbor search.
type SearchOptions struct {
	// Top is the number of results to return. Defaults to DefaultTop.
	Top int

	// Skip is the number of nearest results to skip, for paging.
	Skip int

	// IncludeVectors also loads the embedding columns of the results.
	IncludeVectors bool

	// VectorProperty names the vector property to search when the model
	// has more than one. Defaults to the first declared vector.
	VectorProperty string

	// Filter restricts the search to records matching the expression.
	Filter filter.Expr
}

// SearchResult is one search hit.
type SearchResult[T any] struct {
	Record *T

	// Score is the raw distance or similarity between the query vector and
	// the record's vector, in the collection's distance function. Results
	// arrive ordered best first.
	Score float64
}

// Search returns the records whose vectors are nearest to vector, best
// first. Cosine and euclidean rank by ascending distance, dot product by
// descending similarity.
func (c *Collection[T]) Search(ctx context.Context, vector []float32, opts *SearchOptions) ([]SearchResult[T], error) {
	var options SearchOptions
	if opts != nil {
		options = *opts
	}
	if options.Top == 0 {
		options.Top = DefaultTop
	}

	vp, err := c.searchVector(options.VectorProperty)
	if err != nil {
		return nil, translateError("search", c.name, err)
	}
	if len(vector) != vp.Dimensions {
		return nil, translateError("search", c.name,
			fmt.Errorf("query vector has %d dimensions, expected %d", len(vector), vp.Dimensions))
	}
	encoded, err := record.EncodeVector(vector)
	if err != nil {
		return nil, translateError("search", c.name, err)
	}

	var whereSQL string
	var whereParams []sqlgen.Parameter
	if options.Filter != nil {
		// The query vector takes parameter index 0.
		fragment, err := filtersql.Translate(c.model, options.Filter, 1)
		if err != nil {
			return nil, translateError("search", c.name, err)
		}
		whereSQL = fragment.SQL
		whereParams = fragment.Parameters
	}

	cmd, err := sqlgen.BuildSearch(c.model, c.schemaName, c.tableName, vp,
		encoded, whereSQL, whereParams, options.Top, options.Skip, options.IncludeVectors)
	if err != nil {
		return nil, translateError("search", c.name, err)
	}

	rows, err := c.store.db.Query(ctx, cmd.SQL(), cmd.Args()...)
	if err != nil {
		return nil, translateError("search", c.name, err)
	}
	defer rows.Close()

	var results []SearchResult[T]
	vectorCols := c.model.VectorStorageNames()
	for rows.Next() {
		row, err := reader.Scan(rows, vectorCols)
		if err != nil {
			return nil, translateError("search", c.name, err)
		}
		rec, err := c.mapper.FromStorage(row, options.IncludeVectors)
		if err != nil {
			return nil, translateError("search", c.name, err)
		}
		score, err := scoreValue(row)
		if err != nil {
			return nil, translateError("search", c.name, err)
		}
		results = append(results, SearchResult[T]{Record: rec.(*T), Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("search", c.name, err)
	}
	return results, nil
}

// SearchText embeds text with the collection's embedder and searches for
// the result. Requires WithEmbedder.
func (c *Collection[T]) SearchText(ctx context.Context, text string, opts *SearchOptions) ([]SearchResult[T], error) {
	if c.embedder == nil {
		return nil, translateError("search text", c.name, fmt.Errorf("no embedder configured"))
	}
	vector, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, translateError("search text", c.name, fmt.Errorf("failed to embed text: %w", err))
	}
	return c.Search(ctx, vector, opts)
}

func (c *Collection[T]) searchVector(name string) (schema.VectorProperty, error) {
	vectors := c.model.Vectors()
	if len(vectors) == 0 {
		return schema.VectorProperty{}, fmt.Errorf("collection has no vector properties")
	}
	if name == "" {
		return vectors[0], nil
	}
	vp, ok := c.model.Vector(name)
	if !ok {
		return schema.VectorProperty{}, fmt.Errorf("unknown vector property %q", name)
	}
	return vp, nil
}

func scoreValue(row *reader.Row) (float64, error) {
	raw, ok := row.Get(sqlgen.ScoreColumn)
	if !ok {
		return 0, fmt.Errorf("result row is missing the score column")
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("score column has unexpected type %T", raw)
	}
}
