package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/repositories"
	"qahiring/cv-analyzer/internal/services"
)

type UploadHandler struct {
	analysisRepo    repositories.AnalysisRepository
	storageService  services.StorageService
	extractor       services.TextExtractor
	worker          services.Worker
	maxFileSize     int64
	analysisTimeout time.Duration
}

func NewUploadHandler(
	analysisRepo repositories.AnalysisRepository,
	storageService services.StorageService,
	extractor services.TextExtractor,
	worker services.Worker,
	maxFileSize int64,
	analysisTimeout time.Duration,
) *UploadHandler {
	return &UploadHandler{
		analysisRepo:    analysisRepo,
		storageService:  storageService,
		extractor:       extractor,
		worker:          worker,
		maxFileSize:     maxFileSize,
		analysisTimeout: analysisTimeout,
	}
}

// AllowedFile reports whether the extension is one we can extract text from.
func AllowedFile(filename string) bool {
	_, ok := models.ExtensionMIMETypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// HandleUpload handles POST /api/upload. The CV is stored, analysed
// synchronously and the persisted result is returned.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file part",
		})
	}

	originalFilename := filepath.Base(fileHeader.Filename)
	if fileHeader.Filename == "" || originalFilename == "." {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No selected file",
		})
	}

	if !AllowedFile(originalFilename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File type not allowed",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	ctx := c.UserContext()

	stored, err := h.storageService.SaveFile(ctx, originalFilename, data)
	if err != nil {
		log.Printf("❌ Failed to store %s: %v\n", originalFilename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	cvText := h.extractor.Extract(originalFilename, data)

	analysisCtx, cancel := context.WithTimeout(ctx, h.analysisTimeout)
	defer cancel()

	report, err := h.worker.Submit(analysisCtx, services.AnalysisJob{
		Filename: originalFilename,
		CVText:   cvText,
		Criteria: c.FormValue("criteria"),
	})
	if err != nil {
		h.cleanup(c, stored.Name)
		if errors.Is(err, services.ErrWorkerStopped) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Server is shutting down, please try again",
			})
		}
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("⚠️  Analysis of %s timed out after %s\n", originalFilename, h.analysisTimeout)
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
				"error": "Analysis timed out, please try again",
			})
		}
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{
			"error": "Analysis was cancelled",
		})
	}

	analysis := &models.Analysis{
		ID:               uuid.New(),
		OriginalFilename: originalFilename,
		StoredFilename:   stored.Name,
		StorageLocation:  stored.Location,
		Result:           report,
		CreatedAt:        time.Now(),
	}

	if err := h.analysisRepo.Create(analysis); err != nil {
		log.Printf("❌ Failed to save analysis for %s: %v\n", originalFilename, err)
		h.cleanup(c, stored.Name)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save analysis result",
		})
	}

	log.Printf("✅ Analysis %s saved (%s, %d%%)\n", analysis.ID, report.Decision, report.Confidence)

	return c.JSON(models.UploadResponse{
		ID:       analysis.ID.String(),
		Filename: originalFilename,
		Result:   &analysis.Result,
	})
}

func (h *UploadHandler) cleanup(c *fiber.Ctx, name string) {
	if err := h.storageService.DeleteFile(c.UserContext(), name); err != nil {
		log.Printf("⚠️  Failed to clean up %s: %v\n", name, err)
	}
}
