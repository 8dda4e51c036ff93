package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qahiring/cv-analyzer/internal/client"
	"qahiring/cv-analyzer/internal/config"
	"qahiring/cv-analyzer/internal/rubric"
	"qahiring/cv-analyzer/internal/web"
)

func main() {
	cfg := config.LoadWeb()
	log.Printf("✅ Config loaded (env=%s, api=%s)\n", cfg.Env, cfg.APIURL)

	rb, err := rubric.Default()
	if err != nil {
		log.Fatalf("❌ Failed to load rubric: %v", err)
	}

	api := client.New(cfg.APIURL, cfg.APITimeout)

	app, err := web.NewApp(api, rb, web.Options{
		AppName:       "CV Analyzer",
		MaxUploadSize: cfg.MaxUploadSize,
		AccessLog:     true,
	})
	if err != nil {
		log.Fatalf("❌ Failed to build web app: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down web server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("🚀 Web server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
