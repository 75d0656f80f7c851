package main

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type UpdateUserPreferencesRequest struct {
	UserId         string   `json:"userId" query:"userId"`
	Language       string   `json:"language" query:"language"`
	FavoriteComics []string `json:"favorite_comics" query:"favorite_comics"`
}

var ErrMissingApprovalStatus = errors.New("invalid request: approvalStatus is required")

type ReviewExplanationRequest struct {
	ApprovalStatus *bool  `json:"approvalStatus" query:"approvalStatus"`
	ReviewComment  string `json:"reviewComment" query:"reviewComment"`
}

type SetLanguagePreferenceRequest struct {
	UserId   string `json:"user_id" query:"user_id"`
	Language string `json:"language" query:"language"`
}

type ComicExplanationResponse struct {
	ComicId     string `json:"comicId"`
	Explanation string `json:"explanation"`
	GeneratedBy string `json:"generatedBy"`
	CreatedAt   string `json:"createdAt"`
}

type FlagExplanationResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type ReviewExplanationResponse struct {
	ExplanationId string `json:"explanationId"`
	ReviewStatus  bool   `json:"reviewStatus"`
	Message       string `json:"message"`
}

type UserPreferencesResponse struct {
	Language       string   `json:"language"`
	FavoriteComics []string `json:"favorite_comics"`
}

type SetLanguagePreferenceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserPreferences struct {
	Language       string   `json:"language"`
	FavoriteComics []string `json:"favorite_comics"`
}

type UpdateUserPreferencesResponse struct {
	Success            bool             `json:"success"`
	Message            string           `json:"message"`
	UpdatedPreferences *UserPreferences `json:"updated_preferences"`
}

// parseRequest reads the JSON body, or the query string when the body is empty.
func parseRequest(c *fiber.Ctx, out any) error {
	var err error

	if len(c.Body()) == 0 {
		err = c.QueryParser(out)
	} else {
		err = c.BodyParser(out)
	}

	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	return nil
}
