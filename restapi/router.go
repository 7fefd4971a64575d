// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/services"
	"github.com/ortelius/advisor-backend/restapi/modules/assess"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, store *catalog.Store, assessor *services.Assessor, schema graphql.Schema) {
	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", GraphQLHandler(schema))

	// Assessment Routes
	api.Post("/standardize", assess.Standardize(assessor))
	api.Post("/containerize", assess.Containerize(assessor))
	api.Get("/catalog/summary", assess.CatalogSummary(store))
}
