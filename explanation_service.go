package main

import (
	"comicApi/models"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	PlaceholderExplanation = "Explanation not available."
	PlaceholderGeneratedBy = "Placeholder"
	PlaceholderCreatedAt   = "N/A"
)

// Numeric offsets (+00:00, never Z) and microseconds only when non-zero.
const (
	isoTimeLayout       = "2006-01-02T15:04:05-07:00"
	isoTimeLayoutMicros = "2006-01-02T15:04:05.000000-07:00"
)

func formatIsoTime(t time.Time) string {
	if t.Nanosecond()/1000 == 0 {
		return t.Format(isoTimeLayout)
	}

	return t.Format(isoTimeLayoutMicros)
}

func GetComicExplanation(ctx context.Context, comicId string) (*ComicExplanationResponse, error) {
	var e models.Explanation

	tx := DatabaseConnection.WithContext(ctx).Where("comic_id = ?", comicId).First(&e)

	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return &ComicExplanationResponse{
			ComicId:     comicId,
			Explanation: PlaceholderExplanation,
			GeneratedBy: PlaceholderGeneratedBy,
			CreatedAt:   PlaceholderCreatedAt,
		}, nil
	} else if tx.Error != nil {
		return nil, tx.Error
	}

	return &ComicExplanationResponse{
		ComicId:     e.ComicId,
		Explanation: e.Text,
		GeneratedBy: e.GeneratedBy,
		CreatedAt:   formatIsoTime(e.CreatedAt),
	}, nil
}

// FlagExplanationForReview acknowledges a flag. Nothing is stored.
// TODO: persist flags once the explanations table grows a flagged column.
func FlagExplanationForReview(ctx context.Context, explanationId string) (*FlagExplanationResponse, error) {
	var e models.Explanation

	tx := DatabaseConnection.WithContext(ctx).Where("id = ?", explanationId).First(&e)

	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Explanation with ID %s not found.", explanationId))
	} else if tx.Error != nil {
		return nil, tx.Error
	}

	return &FlagExplanationResponse{
		Message: "Explanation has been flagged for review.",
		Success: true,
	}, nil
}

func ReviewExplanation(ctx context.Context, explanationId string, approvalStatus bool, reviewComment string) (*ReviewExplanationResponse, error) {
	tx := DatabaseConnection.WithContext(ctx).
		Model(&models.Explanation{}).
		Where("id = ?", explanationId).
		Updates(map[string]any{
			"approval_status": approvalStatus,
			"review_comment":  reviewComment,
		})

	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.RowsAffected == 0 {
		return &ReviewExplanationResponse{
			ExplanationId: explanationId,
			ReviewStatus:  false,
			Message:       "Error: Explanation Not Found or Could Not be Updated.",
		}, nil
	}

	decision := "Rejection"
	if approvalStatus {
		decision = "Approval"
	}

	syncSearchIndex(ctx, explanationId, approvalStatus)

	return &ReviewExplanationResponse{
		ExplanationId: explanationId,
		ReviewStatus:  true,
		Message:       fmt.Sprintf("Explanation %s Successful.", decision),
	}, nil
}

// syncSearchIndex mirrors a review decision into the search index. The review
// itself is already stored, so failures are only logged.
func syncSearchIndex(ctx context.Context, explanationId string, approved bool) {
	if !approved {
		if err := SearchIndex.Remove(ctx, explanationId); err != nil {
			slog.Warn("failed to remove explanation from search index", "explanation_id", explanationId, "error", err)
		}
		return
	}

	var e models.Explanation

	if err := DatabaseConnection.WithContext(ctx).Where("id = ?", explanationId).First(&e).Error; err != nil {
		slog.Warn("failed to load explanation for indexing", "explanation_id", explanationId, "error", err)
		return
	}

	if err := SearchIndex.Index(ctx, &e); err != nil {
		slog.Warn("failed to index explanation", "explanation_id", explanationId, "error", err)
	}
}

func SearchExplanations(ctx context.Context, query string) ([]models.IndexedExplanation, error) {
	return SearchIndex.Search(ctx, query, 50)
}
