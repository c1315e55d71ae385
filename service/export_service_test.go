package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"legalmitra-backend/document"
	"legalmitra-backend/models"
	"legalmitra-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"pdf", ExportPDF, false},
		{"PDF", ExportPDF, false},
		{"docx", ExportDOCX, false},
		{"word", ExportDOCX, false},
		{"md", ExportMarkdown, false},
		{"markdown", ExportMarkdown, false},
		{"rtf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseExportFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func newExportService(t *testing.T, files *FileService) *ExportService {
	t.Helper()
	svc := NewExportService(ExportWithFiles(files))
	svc.nowFunc = func() time.Time { return time.Date(2026, 10, 19, 14, 30, 5, 0, time.UTC) }
	return svc
}

func TestExportStoresDocument(t *testing.T) {
	files := newFileService(t)
	svc := newExportService(t, files)
	sess := newTestSession(t)
	rec := sess.Cases.Create("Vehicle theft near market", models.LanguageEnglish, "**Case Classification**\n- Theft under IPC 379")

	for _, format := range []ExportFormat{ExportMarkdown, ExportDOCX, ExportPDF} {
		t.Run(string(format), func(t *testing.T) {
			file, err := svc.Export(context.Background(), sess, ExportRequest{CaseID: rec.CaseID, Format: format})
			require.NoError(t, err)

			assert.Equal(t, models.FileKindExport, file.Kind)
			assert.Equal(t, rec.CaseID, file.CaseID)
			assert.Equal(t, "LegalMitra_Analysis_CASE-000001_20261019_143005."+string(format), file.Filename)
			assert.Positive(t, file.Size)

			_, rc, err := files.Open(context.Background(), sess, file.ID)
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Len(t, data, int(file.Size))
		})
	}

	md, err := svc.Render(rec, ExportMarkdown, time.Now())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(md), "Theft under IPC 379"))
}

func TestExportFailureLeavesCaseUnchanged(t *testing.T) {
	svc := newExportService(t, newFileService(t))
	sess := newTestSession(t)
	rec := sess.Cases.Create("चोरी", models.LanguageHindi, "**मामले का वर्गीकरण**\nचोरी")

	_, err := svc.Export(context.Background(), sess, ExportRequest{CaseID: rec.CaseID, Format: ExportPDF})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportFailed)
	assert.ErrorIs(t, err, document.ErrUnsupportedText)

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "pdf", exportErr.Format)

	got, err := sess.Cases.Get(rec.CaseID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Empty(t, sess.Files.All())

	// the other formats still work for the same record
	_, err = svc.Export(context.Background(), sess, ExportRequest{CaseID: rec.CaseID, Format: ExportDOCX})
	assert.NoError(t, err)
}

func TestExportUnknownCase(t *testing.T) {
	svc := newExportService(t, newFileService(t))
	sess := newTestSession(t)

	_, err := svc.Export(context.Background(), sess, ExportRequest{CaseID: "CASE-000009", Format: ExportMarkdown})
	assert.ErrorIs(t, err, repository.ErrCaseNotFound)
}

func TestPurgeRemovesSessionFiles(t *testing.T) {
	files := newFileService(t)
	svc := newExportService(t, files)
	sess := newTestSession(t)
	rec := sess.Cases.Create("theft", models.LanguageEnglish, "analysis")

	file, err := svc.Export(context.Background(), sess, ExportRequest{CaseID: rec.CaseID, Format: ExportMarkdown})
	require.NoError(t, err)

	files.Purge(sess)
	assert.Empty(t, sess.Files.All())

	_, _, err = files.Open(context.Background(), sess, file.ID)
	assert.ErrorIs(t, err, repository.ErrFileNotFound)
}
