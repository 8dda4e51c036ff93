package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/repositories"
)

type CriteriaHandler struct {
	criteriaRepo repositories.CriteriaRepository
}

func NewCriteriaHandler(criteriaRepo repositories.CriteriaRepository) *CriteriaHandler {
	return &CriteriaHandler{
		criteriaRepo: criteriaRepo,
	}
}

// HandleGetCriteria handles GET /api/criteria
func (h *CriteriaHandler) HandleGetCriteria(c *fiber.Ctx) error {
	text, err := h.criteriaRepo.Get()
	if err != nil {
		log.Printf("❌ Failed to load criteria: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load criteria",
		})
	}

	return c.JSON(models.CriteriaPayload{Criteria: text})
}

// HandleSaveCriteria handles POST /api/criteria. An empty string clears the
// stored criteria so analyses fall back to the built-in rubric.
func (h *CriteriaHandler) HandleSaveCriteria(c *fiber.Ctx) error {
	var req models.CriteriaPayload

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.criteriaRepo.Save(req.Criteria); err != nil {
		log.Printf("❌ Failed to save criteria: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save criteria",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
