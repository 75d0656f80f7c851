package main

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

func comicRoutes(router fiber.Router) {
	router.Get("/comic/random", GetRandomComicHandler)
	router.Get("/api/external/:serviceName/*", FetchExternalAPIDataHandler)
}

func GetRandomComicHandler(c *fiber.Ctx) error {
	res, err := GetRandomComic(c.UserContext())
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}

// FetchExternalAPIDataHandler passes the remainder of the path through as the
// action, so "614/info.0.json" works for xkcd.
func FetchExternalAPIDataHandler(c *fiber.Ctx) error {
	serviceName, err := url.PathUnescape(c.Params("serviceName"))
	if err != nil {
		return err
	}

	action, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return err
	}

	res, err := FetchExternalAPIData(c.UserContext(), serviceName, action)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(res)
}
