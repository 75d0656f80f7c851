package main

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func preferenceRoutes(router fiber.Router) {
	router.Get("/user/preferences", GetUserPreferencesHandler)
	router.Put("/user/preferences", UpdateUserPreferencesHandler)
	router.Put("/i18n/language", SetLanguagePreferenceHandler)
}

func GetUserPreferencesHandler(c *fiber.Ctx) error {
	res, err := GetUserPreferences(c.UserContext(), c.Query("user_id"))
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}

func UpdateUserPreferencesHandler(c *fiber.Ctx) error {
	var r UpdateUserPreferencesRequest

	if err := parseRequest(c, &r); err != nil {
		return err
	}

	res, err := UpdateUserPreferences(c.UserContext(), r.UserId, r.Language, r.FavoriteComics)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}

func SetLanguagePreferenceHandler(c *fiber.Ctx) error {
	var r SetLanguagePreferenceRequest

	if err := parseRequest(c, &r); err != nil {
		return err
	}

	res, err := SetLanguagePreference(c.UserContext(), r.UserId, r.Language)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}
