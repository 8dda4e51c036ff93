package handlers

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Upload   *UploadHandler
	Result   *ResultHandler
	Criteria *CriteriaHandler
}

// RegisterRoutes mounts the backend API under /api.
func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	api.Get("/health", HandleHealth)
	api.Post("/upload", h.Upload.HandleUpload)
	api.Get("/results/:id", h.Result.HandleGetResult)
	api.Get("/criteria", h.Criteria.HandleGetCriteria)
	api.Post("/criteria", h.Criteria.HandleSaveCriteria)
}
