package main

import (
	"comicApi/models"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RediSearch/redisearch-go/redisearch"
	"github.com/bytedance/sonic"
	goredis "github.com/go-redis/redis/v8"
	"github.com/nitishm/go-rejson/v4"
)

const explanationKeyPrefix = "explanation:"

var ErrSearchDisabled = errors.New("explanation search is not configured")

// ExplanationIndex keeps approved explanations searchable.
type ExplanationIndex interface {
	Index(ctx context.Context, e *models.Explanation) error
	Remove(ctx context.Context, explanationId string) error
	Search(ctx context.Context, query string, limit int) ([]models.IndexedExplanation, error)
	// Reset drops every indexed document and recreates an empty index.
	Reset(ctx context.Context) error
}

var SearchIndex ExplanationIndex = disabledIndex{}

type disabledIndex struct{}

func (disabledIndex) Index(context.Context, *models.Explanation) error { return nil }
func (disabledIndex) Remove(context.Context, string) error             { return nil }
func (disabledIndex) Reset(context.Context) error                      { return ErrSearchDisabled }

func (disabledIndex) Search(context.Context, string, int) ([]models.IndexedExplanation, error) {
	return nil, ErrSearchDisabled
}

type redisIndex struct {
	json   *rejson.Handler
	search *redisearch.Client
	redis  *goredis.Client
}

func explanationKey(id string) string {
	return explanationKeyPrefix + id
}

func (r *redisIndex) Index(_ context.Context, e *models.Explanation) error {
	res, err := r.json.JSONSet(explanationKey(e.ID), "$", e.GetIndexedExplanation())
	if err != nil {
		return err
	}

	if s, ok := res.(string); !ok || s != "OK" {
		return fmt.Errorf("unexpected reply indexing explanation %s: %v", e.ID, res)
	}

	return nil
}

func (r *redisIndex) Remove(ctx context.Context, explanationId string) error {
	return r.redis.Del(ctx, explanationKey(explanationId)).Err()
}

func (r *redisIndex) Search(_ context.Context, query string, limit int) ([]models.IndexedExplanation, error) {
	if strings.TrimSpace(query) == "" {
		query = "*"
	}

	docs, _, err := r.search.Search(redisearch.NewQuery(query).Limit(0, limit))
	if err != nil {
		return nil, err
	}

	l := make([]models.IndexedExplanation, 0, len(docs))

	for _, doc := range docs {
		raw, ok := doc.Properties["$"].(string)
		if !ok {
			continue
		}

		var e models.IndexedExplanation
		if err := sonic.UnmarshalString(raw, &e); err != nil {
			return nil, err
		}

		l = append(l, e)
	}

	return l, nil
}

func (r *redisIndex) Reset(ctx context.Context) error {
	// DD removes the indexed documents together with the index.
	if err := r.redis.Do(ctx, "FT.DROPINDEX", SearchIndexName, "DD").Err(); err != nil {
		slog.Debug("drop search index", "error", err)
	}

	return r.create(ctx)
}

// EnsureIndex creates the search index unless it already exists.
func (r *redisIndex) EnsureIndex(ctx context.Context) error {
	err := r.create(ctx)
	if err != nil && strings.Contains(err.Error(), "Index already exists") {
		return nil
	}

	return err
}

func (r *redisIndex) create(ctx context.Context) error {
	return r.redis.Do(ctx, "FT.CREATE", SearchIndexName,
		"ON", "JSON",
		"PREFIX", "1", explanationKeyPrefix,
		"SCHEMA",
		"$.explanation", "AS", "explanation", "TEXT",
		"$.generated_by", "AS", "generated_by", "TEXT",
		"$.comic_id", "AS", "comic_id", "TAG").Err()
}
