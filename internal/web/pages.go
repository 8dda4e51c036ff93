package web

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"qahiring/cv-analyzer/internal/client"
	"qahiring/cv-analyzer/internal/rubric"
)

const (
	msgUploadFailed     = "Failed to upload file. Please try again."
	msgResultFailed     = "Failed to fetch analysis result. Please try again."
	msgCriteriaLoadWarn = "Failed to load saved criteria. You can still create new criteria."
	msgCriteriaSaveFail = "Failed to save criteria. Please try again."
	msgCriteriaSaved    = "Criteria saved successfully!"
)

type PageHandler struct {
	api    API
	rubric *rubric.Rubric
}

func NewPageHandler(api API, rb *rubric.Rubric) *PageHandler {
	return &PageHandler{
		api:    api,
		rubric: rb,
	}
}

// HandleHome handles GET /
func (h *PageHandler) HandleHome(c *fiber.Ctx) error {
	return c.Render("home", withLayout("CV Analyzer for QA Engineers", "home", fiber.Map{}))
}

// HandleUploadForm handles GET /upload
func (h *PageHandler) HandleUploadForm(c *fiber.Ctx) error {
	return h.renderUpload(c, fiber.StatusOK, "", "")
}

// HandleUploadSubmit handles POST /upload. Validation failures are reported
// without calling the backend.
func (h *PageHandler) HandleUploadSubmit(c *fiber.Ctx) error {
	criteria := c.FormValue("criteria")

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		return h.renderUpload(c, fiber.StatusBadRequest, criteria, client.ErrNoFile.Error())
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := client.ValidateUpload(fileHeader.Filename, contentType); err != nil {
		return h.renderUpload(c, fiber.StatusUnsupportedMediaType, criteria, err.Error())
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("⚠️  Failed to open uploaded file: %v\n", err)
		return h.renderUpload(c, fiber.StatusBadRequest, criteria, msgUploadFailed)
	}
	defer file.Close()

	id, err := h.api.Upload(c.UserContext(), client.UploadRequest{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Content:     file,
		Criteria:    criteria,
	})
	if err != nil {
		log.Printf("❌ Error uploading file %q: %v\n", fileHeader.Filename, err)
		return h.renderUpload(c, fiber.StatusBadGateway, criteria, client.ErrorMessage(err, msgUploadFailed))
	}

	return c.Redirect("/results/"+url.PathEscape(id), fiber.StatusSeeOther)
}

func (h *PageHandler) renderUpload(c *fiber.Ctx, status int, criteria, errMsg string) error {
	return c.Status(status).Render("upload", withLayout("Upload CV for Analysis", "upload", fiber.Map{
		"Error":    errMsg,
		"Criteria": criteria,
		"Accept":   ".pdf,.docx,.txt",
	}))
}

// HandleResults handles GET /results/:id
func (h *PageHandler) HandleResults(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return h.renderResultsError(c, fiber.StatusBadRequest, "Invalid result ID")
	}

	result, err := h.api.GetResult(c.UserContext(), id)
	if err != nil {
		log.Printf("❌ Error fetching result %s: %v\n", id, err)
		status := fiber.StatusBadGateway
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == fiber.StatusNotFound {
			status = fiber.StatusNotFound
		}
		return h.renderResultsError(c, status, msgResultFailed)
	}

	return c.Render("results", withLayout("CV Analysis Results", "", fiber.Map{
		"Result": newResultsView(result),
	}))
}

func (h *PageHandler) renderResultsError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("results", withLayout("CV Analysis Results", "", fiber.Map{
		"Error": msg,
	}))
}

// HandleCriteria handles GET /criteria. A failed fetch leaves the editor
// empty and shows a warning; the page stays usable.
func (h *PageHandler) HandleCriteria(c *fiber.Ctx) error {
	view := criteriaView{}

	if c.Query("template") != "" {
		view.Criteria = h.rubric.Template
		return h.renderCriteria(c, fiber.StatusOK, view)
	}

	criteria, err := h.api.GetCriteria(c.UserContext())
	if err != nil {
		log.Printf("⚠️  Error fetching criteria: %v\n", err)
		view.LoadWarning = msgCriteriaLoadWarn
	} else {
		view.Criteria = criteria
	}

	return h.renderCriteria(c, fiber.StatusOK, view)
}

// HandleCriteriaSave handles POST /criteria. The full text is sent as is,
// including an empty string.
func (h *PageHandler) HandleCriteriaSave(c *fiber.Ctx) error {
	view := criteriaView{Criteria: c.FormValue("criteria")}

	if err := h.api.SaveCriteria(c.UserContext(), view.Criteria); err != nil {
		log.Printf("❌ Error saving criteria: %v\n", err)
		view.SaveError = msgCriteriaSaveFail
		return h.renderCriteria(c, fiber.StatusBadGateway, view)
	}

	view.Saved = msgCriteriaSaved
	return h.renderCriteria(c, fiber.StatusOK, view)
}

func (h *PageHandler) renderCriteria(c *fiber.Ctx, status int, view criteriaView) error {
	return c.Status(status).Render("criteria", withLayout("Evaluation Criteria", "criteria", fiber.Map{
		"View":   view,
		"Rubric": h.rubric,
	}))
}

// withLayout adds the values the shared layout needs.
func withLayout(title, active string, data fiber.Map) fiber.Map {
	data["Title"] = title
	data["Active"] = active
	data["Year"] = time.Now().Year()
	return data
}
