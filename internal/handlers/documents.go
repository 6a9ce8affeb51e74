package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

const defaultMaxUploadSize = 25 << 20

// DocumentHandler accepts multipart uploads and streams stored files back.
type DocumentHandler struct {
	documents     *services.DocumentService
	maxUploadSize int64
}

func NewDocumentHandler(documents *services.DocumentService, maxUploadSize int64) *DocumentHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &DocumentHandler{documents: documents, maxUploadSize: maxUploadSize}
}

type documentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	documents, err := h.documents.List(requestContext(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, documents)
}

// GET /api/documents/categories
func (h *DocumentHandler) Categories(c *gin.Context) {
	response.Success(c, http.StatusOK, h.documents.Categories())
}

// POST /api/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errors.NewValidation("file is required"))
		return
	}
	if header.Size > h.maxUploadSize {
		response.Error(c, errors.NewValidation(fmt.Sprintf("file exceeds %d bytes", h.maxUploadSize)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, errors.NewBadRequest("unable to read uploaded file"))
		return
	}
	defer file.Close()

	document, err := h.documents.Upload(actorContext(c), services.UploadDocumentInput{
		FileName:   header.Filename,
		Category:   c.PostForm("category"),
		ProjectID:  c.PostForm("project_id"),
		UploaderID: currentUserID(c),
		Content:    file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, document)
}

// GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	document, err := h.documents.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, document)
}

// GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	document, reader, err := h.documents.Open(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(document.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, document.SizeBytes, contentType, reader, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": document.Name}),
	})
}

// PATCH /api/documents/:id/status
func (h *DocumentHandler) SetStatus(c *gin.Context) {
	var req documentStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	document, err := h.documents.SetStatus(actorContext(c), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, document)
}
