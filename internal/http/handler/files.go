package handler

import (
	"mime"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"catbox/internal/http/middleware"
	"catbox/internal/model"
	"catbox/internal/service"
)

type fileResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
	PublicURL    string    `json:"public_url"`
}

type fileListResponse struct {
	Data  []fileResponse `json:"data"`
	Total int            `json:"total"`
}

func toFileResponse(svc service.FileService, f model.FileRecord) fileResponse {
	return fileResponse{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		StoredName:   f.StoredName,
		Size:         f.Size,
		ContentType:  f.ContentType,
		UploadedAt:   f.UploadedAt,
		PublicURL:    svc.PublicURL(f.StoredName),
	}
}

// ListFiles returns the caller's files in upload order.
//
// @Summary   List my files
// @Tags      files
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} fileListResponse
// @Failure   401 {object} errorPayload
// @Router    /files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), middleware.UserIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		out := fileListResponse{Data: make([]fileResponse, 0, len(items)), Total: len(items)}
		for _, f := range items {
			out.Data = append(out.Data, toFileResponse(svc, f))
		}
		return c.JSON(out)
	}
}

// UploadFile stores a multipart upload (field name: file).
//
// @Summary   Upload a file
// @Tags      files
// @Accept    multipart/form-data
// @Produce   json
// @Security  BearerAuth
// @Param     file formData file true "file to upload"
// @Success   201 {object} fileResponse
// @Failure   400 {object} errorPayload
// @Failure   401 {object} errorPayload
// @Failure   500 {object} errorPayload
// @Router    /files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		rec, err := svc.Upload(c.UserContext(), middleware.UserIDFromCtx(c), fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toFileResponse(svc, *rec))
	}
}

// DownloadFile streams one of the caller's files as an attachment.
//
// @Summary   Download my file
// @Tags      files
// @Produce   octet-stream
// @Security  BearerAuth
// @Param     id path string true "file id"
// @Success   200 {file} binary
// @Failure   404 {object} errorPayload
// @Router    /files/{id} [get]
func DownloadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blob, err := svc.Download(c.UserContext(), middleware.UserIDFromCtx(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendBlob(c, blob, "attachment")
	}
}

// DeleteFile removes one of the caller's files.
//
// @Summary   Delete my file
// @Tags      files
// @Security  BearerAuth
// @Param     id path string true "file id"
// @Success   204
// @Failure   404 {object} errorPayload
// @Router    /files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.UserIDFromCtx(c), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PublicFile serves a file by stored name to anyone holding the link.
//
// @Summary  Public link
// @Tags     public
// @Param    name path string true "stored name"
// @Success  200 {file} binary
// @Failure  404 {object} errorPayload
// @Router   /f/{name} [get]
func PublicFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blob, err := svc.ResolvePublic(c.UserContext(), c.Params("name"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendBlob(c, blob, "inline")
	}
}

// inlineTypes may render in the browser. Anything else is sent as an
// octet-stream attachment.
var inlineTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

func inlineSafe(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return inlineTypes[mt] || strings.HasPrefix(mt, "video/") || strings.HasPrefix(mt, "audio/")
}

// sendBlob streams the blob; fasthttp closes Content once the body is written.
func sendBlob(c *fiber.Ctx, blob *service.Blob, disposition string) error {
	contentType := blob.ContentType
	if !inlineSafe(contentType) {
		if disposition == "inline" {
			disposition = "attachment"
		}
		contentType = fiber.MIMEOctetStream
	}

	cd := mime.FormatMediaType(disposition, map[string]string{"filename": blob.Filename})
	if cd == "" {
		cd = disposition
	}
	c.Set(fiber.HeaderContentDisposition, cd)
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderContentSecurityPolicy, "sandbox")
	return c.SendStream(blob.Content, int(blob.Size))
}
