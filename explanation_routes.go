package main

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func explanationRoutes(router fiber.Router) {
	router.Get("/explanation/:comicId", GetComicExplanationHandler)
	router.Get("/explanations/search", SearchExplanationsHandler)

	router.Post("/moderation/flag/:explanationId", FlagExplanationHandler)
	router.Put("/moderation/review/:explanationId", ReviewExplanationHandler)
}

func GetComicExplanationHandler(c *fiber.Ctx) error {
	res, err := GetComicExplanation(c.UserContext(), c.Params("comicId"))
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}

func SearchExplanationsHandler(c *fiber.Ctx) error {
	res, err := SearchExplanations(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}

func FlagExplanationHandler(c *fiber.Ctx) error {
	res, err := FlagExplanationForReview(c.UserContext(), c.Params("explanationId"))
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}

func ReviewExplanationHandler(c *fiber.Ctx) error {
	var r ReviewExplanationRequest

	if err := parseRequest(c, &r); err != nil {
		return err
	}

	// A missing decision must not be read as a rejection.
	if r.ApprovalStatus == nil {
		return ErrMissingApprovalStatus
	}

	res, err := ReviewExplanation(c.UserContext(), c.Params("explanationId"), *r.ApprovalStatus, r.ReviewComment)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}
