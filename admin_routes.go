package main

import (
	"comicApi/models"
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const rebuildStatusKey = "rebuild_search_index"

var ErrMissingBearerToken = fiber.Map{"error": "Missing bearer token."}
var ErrAlreadyRebuilding = fiber.Map{"error": "Search index rebuild is already running. Please wait."}

func adminRoutes(router fiber.Router) {
	router.Post("/admin/rebuild_search_index", EnforceAdminSecret, RebuildSearchIndex)
	router.Get("/admin/rebuild_search_index/status", EnforceAdminSecret, RebuildSearchIndexStatus)
}

func EnforceAdminSecret(c *fiber.Ctx) error {
	authorizationHeader := c.Get("Authorization")

	if !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return c.Status(http.StatusUnauthorized).
			JSON(ErrMissingBearerToken)
	}

	authorizationHeader = strings.TrimPrefix(authorizationHeader, "Bearer ")

	// No configured secret locks the admin routes entirely.
	if ServiceConfig.AdminSecret == "" ||
		subtle.ConstantTimeCompare([]byte(authorizationHeader), []byte(ServiceConfig.AdminSecret)) != 1 {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{})
	}

	return c.Next()
}

func RebuildSearchIndex(c *fiber.Ctx) error {
	if RedisConnection == nil {
		return ErrSearchDisabled
	}

	ctx := c.UserContext()

	started, err := RedisConnection.SetNX(ctx, rebuildStatusKey, 0, 0).Result()
	if err != nil {
		return err
	}

	if !started {
		return c.Status(http.StatusBadRequest).JSON(ErrAlreadyRebuilding)
	}

	if err = SearchIndex.Reset(ctx); err != nil {
		RedisConnection.Del(ctx, rebuildStatusKey)
		return err
	}

	go func() {
		bg := context.Background()

		err := rebuildSearchIndex(bg, DatabaseConnection, SearchIndex, func(batch int) {
			RedisConnection.Set(bg, rebuildStatusKey, batch, 0)
		})
		if err != nil {
			slog.Error("search index rebuild failed", "error", err)
		} else {
			slog.Info("finished rebuilding search index")
		}

		RedisConnection.Del(bg, rebuildStatusKey)
	}()

	return c.Status(http.StatusOK).JSON(fiber.Map{})
}

func RebuildSearchIndexStatus(c *fiber.Ctx) error {
	if RedisConnection == nil {
		return ErrSearchDisabled
	}

	batch, err := RedisConnection.Get(c.UserContext(), rebuildStatusKey).Result()

	if err == redis.Nil {
		return c.Status(http.StatusNoContent).JSON(fiber.Map{})
	} else if err != nil {
		return err
	}

	batchInt, err := strconv.Atoi(batch)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"batch": batchInt})
}

// rebuildSearchIndex re-indexes every approved explanation in batches of 1000,
// reporting each finished batch number.
func rebuildSearchIndex(ctx context.Context, db *gorm.DB, index ExplanationIndex, progress func(batch int)) error {
	var batch []models.Explanation

	tx := db.WithContext(ctx).
		Where("approval_status = ?", true).
		FindInBatches(&batch, 1000, func(tx *gorm.DB, n int) error {
			for i := range batch {
				if err := index.Index(ctx, &batch[i]); err != nil {
					slog.Warn("failed to index explanation", "explanation_id", batch[i].ID, "error", err)
				}
			}

			slog.Debug("processed search index batch", "batch", n)
			progress(n)

			return nil
		})

	return tx.Error
}
