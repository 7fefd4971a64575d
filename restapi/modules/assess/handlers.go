// Package assess provides the REST handlers for the standardization and
// containerization endpoints.
package assess

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/services"
	"github.com/ortelius/advisor-backend/model"
)

// Standardize handles POST /api/v1/standardize: runs extraction,
// standardization, version resolution and inference over the submitted
// components.
func Standardize(assessor *services.Assessor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.AssessRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if len(req.Components) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Request contains no components",
			})
		}

		comps, err := assessor.AssessAll(req.Components, services.BatchOptions{})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		return c.JSON(model.AssessResponse{Components: comps})
	}
}

// Containerize handles POST /api/v1/containerize: the full pipeline
// including image planning against the catalog named by the "catalog" query
// parameter (default "dockerhub").
func Containerize(assessor *services.Assessor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.AssessRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if len(req.Components) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Request contains no components",
			})
		}

		catalogName := c.Query("catalog", "dockerhub")
		comps, err := assessor.AssessAll(req.Components, services.BatchOptions{Catalog: catalogName})
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		return c.JSON(model.AssessResponse{Components: comps})
	}
}

// CatalogSummary handles GET /api/v1/catalog/summary.
func CatalogSummary(store *catalog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.Summary())
	}
}
