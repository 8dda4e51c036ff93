// Package web serves the CV Analyzer pages. Every page talks to the analysis
// backend through an API and renders server-side.
package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"qahiring/cv-analyzer/internal/client"
	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/rubric"
)

//go:embed templates
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// API is the subset of the backend the pages depend on.
type API interface {
	GetCriteria(ctx context.Context) (string, error)
	SaveCriteria(ctx context.Context, text string) error
	Upload(ctx context.Context, req client.UploadRequest) (string, error)
	GetResult(ctx context.Context, id string) (*models.AnalysisResult, error)
}

type Options struct {
	AppName       string
	MaxUploadSize int
	AccessLog     bool
}

// NewApp builds the Fiber application with all page routes registered.
func NewApp(api API, rb *rubric.Rubric, opts Options) (*fiber.App, error) {
	templatesFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, err
	}
	assetsFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}

	engine := html.NewFileSystem(http.FS(templatesFS), ".html")

	if opts.AppName == "" {
		opts.AppName = "CV Analyzer"
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 16 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		Views:        engine,
		ViewsLayout:  "layouts/main",
		BodyLimit:    opts.MaxUploadSize,
		ReadTimeout:  30 * time.Second,
		ErrorHandler: pageErrorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(assetsFS),
	}))

	pages := NewPageHandler(api, rb)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/", pages.HandleHome)
	app.Get("/upload", pages.HandleUploadForm)
	app.Post("/upload", pages.HandleUploadSubmit)
	app.Get("/results/:id", pages.HandleResults)
	app.Get("/criteria", pages.HandleCriteria)
	app.Post("/criteria", pages.HandleCriteriaSave)

	return app, nil
}

// pageErrorHandler renders unexpected errors as a page with a way back home.
func pageErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	message := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound {
		message = "Page not found."
	}
	if code == fiber.StatusRequestEntityTooLarge {
		message = "The selected file is too large."
	}

	return c.Status(code).Render("error", withLayout("Error", "", fiber.Map{
		"Message": message,
	}))
}
