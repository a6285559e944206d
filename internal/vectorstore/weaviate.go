package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/loreforge/loreforge/internal/domain"
)

// WeaviateMaxBatch bounds the objects sent in one batch call.
const WeaviateMaxBatch = 200

// WeaviateStore keeps each collection as a Weaviate class with externally
// supplied vectors (vectorizer "none").
type WeaviateStore struct {
	client *weaviate.Client
}

type WeaviateConfig struct {
	Host   string
	Scheme string
	APIKey string
}

func NewWeaviateStore(cfg WeaviateConfig) (*WeaviateStore, error) {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(cfg.Host, "http://"), "https://")

	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateStore{client: client}, nil
}

// className maps a collection name to a GraphQL-valid Weaviate class name.
func className(collection string) string {
	return "Chunks_" + collection
}

var chunkProperties = []*models.Property{
	{Name: "sourceId", DataType: []string{"text"}},
	{Name: "chunkIndex", DataType: []string{"int"}},
	{Name: "worldId", DataType: []string{"int"}},
	{Name: "conceptId", DataType: []string{"int"}},
	{Name: "agentId", DataType: []string{"int"}},
	{Name: "title", DataType: []string{"text"}},
	{Name: "content", DataType: []string{"text"}},
}

func (s *WeaviateStore) ensureClass(ctx context.Context, collection string) error {
	name := className(collection)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check class %s: %w", name, err)
	}
	if exists {
		return nil
	}
	classObj := &models.Class{
		Class:           name,
		Properties:      chunkProperties,
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
	return s.client.Schema().ClassCreator().WithClass(classObj).Do(ctx)
}

// classifyBatchErr maps backend payload-limit failures to ErrBatchTooLarge.
func classifyBatchErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "too large") || strings.Contains(msg, "413") {
		return fmt.Errorf("%s: %w", err.Error(), ErrBatchTooLarge)
	}
	return err
}

func (s *WeaviateStore) Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) > WeaviateMaxBatch {
		return fmt.Errorf("insert of %d chunks: %w", len(chunks), ErrBatchTooLarge)
	}
	if err := s.ensureClass(ctx, collection); err != nil {
		return err
	}

	batcher := s.client.Batch().ObjectsBatcher()
	for i, c := range chunks {
		batcher = batcher.WithObjects(&models.Object{
			Class: className(collection),
			Properties: map[string]interface{}{
				"sourceId":   c.Meta.SourceID,
				"chunkIndex": c.Meta.ChunkIndex,
				"worldId":    c.Meta.WorldID,
				"conceptId":  c.Meta.ConceptID,
				"agentId":    c.Meta.AgentID,
				"title":      c.Meta.Title,
				"content":    c.Text,
			},
			Vector: vectors[i],
		})
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		return classifyBatchErr(err)
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch insert failed: %s", obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func (s *WeaviateStore) DeleteSource(ctx context.Context, collection, sourceID string) error {
	name := className(collection)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil || !exists {
		return err
	}

	where := filters.Where().
		WithPath([]string{"sourceId"}).
		WithOperator(filters.Equal).
		WithValueText(sourceID)

	_, err = s.client.Batch().ObjectsBatchDeleter().
		WithClassName(name).
		WithWhere(where).
		Do(ctx)
	return err
}

func (s *WeaviateStore) DeleteCollection(ctx context.Context, collection string) error {
	name := className(collection)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil || !exists {
		return err
	}
	return s.client.Schema().ClassDeleter().WithClassName(name).Do(ctx)
}

// listPageSize bounds how many objects an export fetch requests at once.
const listPageSize = 10000

var chunkFields = []graphql.Field{
	{Name: "sourceId"},
	{Name: "chunkIndex"},
	{Name: "worldId"},
	{Name: "conceptId"},
	{Name: "agentId"},
	{Name: "title"},
	{Name: "content"},
	{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "vector"}}},
}

func (s *WeaviateStore) Query(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	name := className(collection)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(name).
		WithFields(chunkFields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return parseHits(result, name)
}

func (s *WeaviateStore) List(ctx context.Context, collection string) ([]Hit, error) {
	name := className(collection)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(name).
		WithFields(chunkFields...).
		WithLimit(listPageSize).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return parseHits(result, name)
}

func parseHits(result *models.GraphQLResponse, name string) ([]Hit, error) {
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("query failed: %s", result.Errors[0].Message)
	}

	var hits []Hit
	data, ok := result.Data["Get"].(map[string]interface{})[name].([]interface{})
	if !ok {
		return nil, nil
	}
	for _, item := range data {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		h := Hit{
			Text: asString(obj["content"]),
			Meta: domain.ChunkMetadata{
				SourceID:   asString(obj["sourceId"]),
				ChunkIndex: int(asFloat(obj["chunkIndex"])),
				WorldID:    int64(asFloat(obj["worldId"])),
				ConceptID:  int64(asFloat(obj["conceptId"])),
				AgentID:    int64(asFloat(obj["agentId"])),
				Title:      asString(obj["title"]),
			},
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			h.Distance = float32(asFloat(additional["distance"]))
			if raw, ok := additional["vector"].([]interface{}); ok {
				h.Vector = make([]float32, len(raw))
				for i, v := range raw {
					h.Vector[i] = float32(asFloat(v))
				}
			}
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
