package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/storage"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

func newDocumentService(t *testing.T, f *serviceFixture) (*DocumentService, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	svc, err := NewDocumentService(f.db, storage.NewBlobStore(fs), f.audit)
	require.NoError(t, err)
	return svc, fs
}

func TestDocumentServiceUploadAndOpen(t *testing.T) {
	f := newServiceFixture(t)
	svc, fs := newDocumentService(t, f)
	at := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	uploader := f.createUser(t, "uploader@example.com", nil)
	project := mustCreateProject(t, f.db, "Library")
	content := strings.Repeat("x", 2048)

	doc, err := svc.Upload(context.Background(), UploadDocumentInput{
		FileName:   "site-plan.PDF",
		Category:   "Site Plan",
		ProjectID:  project.ID,
		UploaderID: uploader.ID,
		Content:    strings.NewReader(content),
	})
	require.NoError(t, err)
	require.Equal(t, models.DocumentStatusPending, doc.Status)
	require.Equal(t, "pdf", doc.Type)
	require.Equal(t, "2.00 KB", doc.Size)
	require.EqualValues(t, 2048, doc.SizeBytes)
	require.Equal(t, storage.ObjectPath(uploader.ID, at, "site-plan.PDF"), doc.FilePath)

	exists, err := afero.Exists(fs, doc.FilePath)
	require.NoError(t, err)
	require.True(t, exists)

	meta, reader, err := svc.Open(context.Background(), doc.ID)
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, doc.Name, meta.Name)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, content, string(data))
}

func TestDocumentServiceUploadValidation(t *testing.T) {
	f := newServiceFixture(t)
	svc, _ := newDocumentService(t, f)
	ctx := context.Background()
	uploader := f.createUser(t, "u@example.com", nil)
	project := mustCreateProject(t, f.db, "Stadium")

	_, err := svc.Upload(ctx, UploadDocumentInput{FileName: "a.pdf", ProjectID: project.ID, UploaderID: uploader.ID, Content: strings.NewReader("a")})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(ctx, UploadDocumentInput{FileName: "a.pdf", Category: "Party Photos", ProjectID: project.ID, UploaderID: uploader.ID, Content: strings.NewReader("a")})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(ctx, UploadDocumentInput{Category: "Site Plan", ProjectID: project.ID, UploaderID: uploader.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(ctx, UploadDocumentInput{FileName: "a.pdf", Category: "Site Plan", ProjectID: "missing", UploaderID: uploader.ID, Content: strings.NewReader("a")})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestDocumentServiceListSearchAndReview(t *testing.T) {
	f := newServiceFixture(t)
	svc, _ := newDocumentService(t, f)
	ctx := context.Background()
	uploader := f.createUser(t, "u@example.com", nil)
	project := mustCreateProject(t, f.db, "Airport")

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}

	older, err := svc.Upload(ctx, UploadDocumentInput{FileName: "permit.pdf", Category: "Building Permit", ProjectID: project.ID, UploaderID: uploader.ID, Content: strings.NewReader("p")})
	require.NoError(t, err)
	newer, err := svc.Upload(ctx, UploadDocumentInput{FileName: "wiring.dwg", Category: "Electrical Plans", ProjectID: project.ID, UploaderID: uploader.ID, Content: strings.NewReader("w")})
	require.NoError(t, err)

	docs, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, newer.ID, docs[0].ID)

	found, err := svc.List(ctx, "permit")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, older.ID, found[0].ID)

	reviewed, err := svc.SetStatus(ctx, older.ID, "Approved")
	require.NoError(t, err)
	require.Equal(t, models.DocumentStatusApproved, reviewed.Status)

	_, err = svc.SetStatus(ctx, older.ID, "lost")
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrDocumentNotFound)

	require.Len(t, svc.Categories(), 10)
}
