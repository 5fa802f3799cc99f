package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// Problem type URIs are stable identifiers consumed by the builder UI; the
// suffix is the only part clients switch on.
const problemTypeBase = "https://api.crewline.dev/problems/"

func newProblem(c fiber.Ctx, status int, kind string) *problems.Problem {
	return problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemTypeBase + kind)
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := newProblem(c, fiber.StatusBadRequest, "validation").WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := newProblem(c, fiber.StatusNotFound, "not-found").WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := newProblem(c, fiber.StatusInternalServerError, "internal").WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}
