package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"catbox/internal/http/middleware"
	"catbox/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /files requires a session; /f/:name is public.
func RegisterRoutes(app *fiber.App, db *sql.DB, authSvc service.AuthService, fileSvc service.FileService) {
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/register", Register(authSvc))
	app.Post("/auth/login", Login(authSvc))
	app.Post("/auth/logout", Logout(authSvc))

	guard := middleware.RequireSession(authSvc)
	app.Get("/files", guard, ListFiles(fileSvc))
	app.Post("/files", guard, UploadFile(fileSvc))
	app.Get("/files/:id", guard, DownloadFile(fileSvc))
	app.Delete("/files/:id", guard, DeleteFile(fileSvc))

	app.Get("/f/:name", PublicFile(fileSvc))
}
