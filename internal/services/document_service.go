package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/storage"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/logger"
	"github.com/Mathew1327/Construction-tracker/pkg/metrics"
)

// DocumentCategories is the fixed construction document catalog.
var DocumentCategories = []string{
	"Site Plan",
	"Building Permit",
	"Structural Drawings",
	"Electrical Plans",
	"Plumbing Plans",
	"HVAC Plans",
	"Material Specifications",
	"Safety Certificates",
	"Inspection Reports",
	"Completion Certificate",
}

// UploadDocumentInput describes a file being attached to a project.
type UploadDocumentInput struct {
	FileName   string
	Category   string
	ProjectID  string
	UploaderID string
	Content    io.Reader
}

// DocumentService stores project documents in blob storage with a metadata row.
type DocumentService struct {
	db           *gorm.DB
	blobs        storage.BlobStore
	auditService *AuditService
	now          func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(db *gorm.DB, blobs storage.BlobStore, audit *AuditService) (*DocumentService, error) {
	if db == nil {
		return nil, errors.New("document service: db is required")
	}
	if blobs == nil {
		return nil, errors.New("document service: blob store is required")
	}
	return &DocumentService{db: db, blobs: blobs, auditService: audit, now: time.Now}, nil
}

// Categories returns a copy of the document catalog.
func (s *DocumentService) Categories() []string {
	out := make([]string, len(DocumentCategories))
	copy(out, DocumentCategories)
	return out
}

// List returns documents by upload date, newest first. Search matches name or category.
func (s *DocumentService) List(ctx context.Context, search string) ([]models.Document, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Document{})
	if strings.TrimSpace(search) != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}

	documents := []models.Document{}
	if err := query.Order("upload_date DESC").Find(&documents).Error; err != nil {
		return nil, gatewayError("document service: list documents", err)
	}
	return documents, nil
}

// Get loads document metadata by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	ctx = ensureContext(ctx)

	var document models.Document
	if err := s.db.WithContext(ctx).Take(&document, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(ErrDocumentNotFound, "document service: get document", err)
	}
	return &document, nil
}

// Upload writes the file to blob storage and records it as pending review.
// The blob is removed again when the metadata row cannot be written.
func (s *DocumentService) Upload(ctx context.Context, input UploadDocumentInput) (*models.Document, error) {
	ctx = ensureContext(ctx)

	fileName := strings.TrimSpace(filepath.Base(input.FileName))
	category := strings.TrimSpace(input.Category)
	projectID := strings.TrimSpace(input.ProjectID)
	uploaderID := strings.TrimSpace(input.UploaderID)
	switch {
	case input.Content == nil || fileName == "" || fileName == ".":
		return nil, apperrors.NewValidation("file is required")
	case category == "" || projectID == "":
		return nil, apperrors.NewValidation("category and project are required")
	case !validDocumentCategory(category):
		return nil, apperrors.NewValidation("unknown document category")
	case uploaderID == "":
		return nil, apperrors.ErrUnauthorized
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, gatewayError("document service: load project", err)
	}
	if count == 0 {
		return nil, ErrProjectNotFound
	}

	now := s.now()
	objectPath := storage.ObjectPath(uploaderID, now, fileName)
	written, err := s.blobs.Put(ctx, objectPath, input.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, "Upload failed")
	}

	document := &models.Document{
		Name:         fileName,
		Category:     category,
		ProjectID:    projectID,
		UploadedByID: uploaderID,
		FilePath:     objectPath,
		Type:         strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), "."),
		Size:         formatKilobytes(written),
		SizeBytes:    written,
		Version:      1,
		Status:       models.DocumentStatusPending,
		UploadDate:   now,
	}
	if err := s.db.WithContext(ctx).Create(document).Error; err != nil {
		if delErr := s.blobs.Delete(ctx, objectPath); delErr != nil {
			logger.WithModule("documents").Warn("failed to remove orphaned blob",
				zap.String("path", objectPath),
				zap.Error(delErr))
		}
		return nil, gatewayError("document service: save metadata", err)
	}

	metrics.DocumentBytes.Add(float64(written))
	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &uploaderID,
		Action:   "document.upload",
		Resource: document.ID,
		Result:   "success",
		Metadata: map[string]any{"project_id": projectID, "category": category, "size_bytes": written},
	})
	return document, nil
}

// Open returns the document metadata and a reader over its content. Callers close the reader.
func (s *DocumentService) Open(ctx context.Context, id string) (*models.Document, io.ReadCloser, error) {
	ctx = ensureContext(ctx)

	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.blobs.Open(ctx, document.FilePath)
	if err != nil {
		return nil, nil, ErrDocumentNotFound.WithInternal(err)
	}
	return document, reader, nil
}

// SetStatus records a review decision.
func (s *DocumentService) SetStatus(ctx context.Context, id, status string) (*models.Document, error) {
	ctx = ensureContext(ctx)

	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case models.DocumentStatusPending, models.DocumentStatusApproved, models.DocumentStatusRejected:
	default:
		return nil, apperrors.NewValidation("status must be pending, approved or rejected")
	}

	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, gatewayError("document service: update status", err)
	}
	document.Status = status

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "document.review",
		Resource: id,
		Result:   "success",
		Metadata: map[string]any{"status": status},
	})
	return document, nil
}

func validDocumentCategory(category string) bool {
	for _, c := range DocumentCategories {
		if c == category {
			return true
		}
	}
	return false
}

// formatKilobytes renders a byte count as "12.34 KB".
func formatKilobytes(n int64) string {
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}
