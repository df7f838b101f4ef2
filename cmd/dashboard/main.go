package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"adpulse/internal/app"
)

// Embedded dashboard web assets
//go:embed all:web
var webFiles embed.FS

func main() {
	var webFS fs.FS
	if sub, err := fs.Sub(webFiles, "web"); err == nil {
		webFS = sub
	} else {
		slog.Warn("web asset embedding failed", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(webFS)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
