package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"legalmitra-backend/llm"
	"legalmitra-backend/service"
	"legalmitra-backend/session"
	"legalmitra-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	router   *gin.Engine
	sessions *session.Manager
	jobs     *service.JobService
}

func newTestServer(t *testing.T, gen llm.Generator) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files := service.NewFileService(store, nil)
	sessions := session.NewManager(time.Hour, time.Hour, session.WithEvictionHook(files.Purge))
	t.Cleanup(sessions.Close)

	references := service.NewReferenceService(service.ReferenceWithFiles(files))
	jobs := service.NewJobService(
		service.JobWithCaseService(service.NewCaseService(service.CaseWithGenerator(gen))),
		service.JobWithReferenceService(references),
	)

	router := gin.New()
	SetupRoutes(router, Dependencies{
		Sessions:       sessions,
		Jobs:           jobs,
		Exports:        service.NewExportService(service.ExportWithFiles(files)),
		Files:          files,
		References:     references,
		MaxUploadSize:  1024,
		MaxUploadFiles: 2,
	})

	return &testServer{router: router, sessions: sessions, jobs: jobs}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var summary struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	require.NotEmpty(t, summary.ID)
	return summary.ID
}

type jobView struct {
	ID     string `json:"id"`
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Result *struct {
		CaseID  string `json:"case_id"`
		Version int    `json:"version"`
		Text    string `json:"text"`
	} `json:"result"`
	ErrorMessage *string `json:"error_message"`
}

// get fetches a job without failing the test, for use inside Eventually
func (s *testServer) get(sid, jobID string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sid+"/jobs/"+jobID, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *testServer) waitJob(t *testing.T, sid, jobID, status string) jobView {
	t.Helper()
	var job jobView
	require.Eventually(t, func() bool {
		w, env := s.get(sid, jobID)
		if w.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(env.Data, &job); err != nil {
			return false
		}
		return job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func (s *testServer) submit(t *testing.T, path string, body interface{}) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var accepted jobView
	require.NoError(t, json.Unmarshal(env.Data, &accepted))
	assert.Equal(t, "pending", accepted.Status)
	return accepted.JobID
}

func TestCaseLifecycle(t *testing.T) {
	gen := llm.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "NEW EVIDENCE") {
			return "The new evidence weakens the defense.", nil
		}
		return "**Case Classification**\n- Theft under IPC 379", nil
	})
	s := newTestServer(t, gen)
	sid := s.createSession(t)
	base := "/api/sessions/" + sid

	jobID := s.submit(t, base+"/cases/analyze", gin.H{"scenario": "Bike stolen from parking", "language": "English"})
	job := s.waitJob(t, sid, jobID, "completed")
	require.NotNil(t, job.Result)
	caseID := job.Result.CaseID
	assert.Equal(t, "CASE-000001", caseID)

	jobID = s.submit(t, base+"/cases/"+caseID+"/evidence", gin.H{"evidence": "CCTV shows the accused"})
	job = s.waitJob(t, sid, jobID, "completed")
	assert.Equal(t, 2, job.Result.Version)
	assert.Equal(t, "The new evidence weakens the defense.", job.Result.Text)

	w, env := s.do(t, http.MethodGet, base+"/cases/"+caseID+"?version=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Case struct {
			Version         int `json:"version"`
			EvidenceUpdates []struct {
				EvidenceText string `json:"evidence_text"`
			} `json:"evidence_updates"`
		} `json:"case"`
		Permalink string `json:"permalink"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 2, got.Case.Version)
	require.Len(t, got.Case.EvidenceUpdates, 1)
	assert.Contains(t, got.Permalink, "legalmitra://case/"+caseID+"/v1/")

	w, env = s.do(t, http.MethodPost, base+"/cases/"+caseID+"/exports", gin.H{"format": "markdown"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var file struct {
		Filename    string `json:"filename"`
		DownloadURL string `json:"download_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &file))
	assert.True(t, strings.HasSuffix(file.Filename, ".md"))

	w, _ = s.do(t, http.MethodGet, file.DownloadURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Theft under IPC 379")
	assert.Contains(t, w.Header().Get("Content-Disposition"), file.Filename)

	w, env = s.do(t, http.MethodPost, base+"/cases/"+caseID+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		ProsecutionRisk string `json:"prosecution_risk"`
		CompletedStages int    `json:"completed_stages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "High", report.ProsecutionRisk)
	assert.Equal(t, 2, report.CompletedStages)
}

func TestListCasesOrder(t *testing.T) {
	s := newTestServer(t, llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "analysis", nil
	}))
	sid := s.createSession(t)
	sess, err := s.sessions.Get(sid)
	require.NoError(t, err)
	sess.Cases.Create("first", "English", "a")
	sess.Cases.Create("second", "English", "b")

	var cases []struct {
		CaseID string `json:"case_id"`
	}

	_, env := s.do(t, http.MethodGet, "/api/sessions/"+sid+"/cases?order=desc", nil)
	require.NoError(t, json.Unmarshal(env.Data, &cases))
	require.Len(t, cases, 2)
	assert.Equal(t, "CASE-000002", cases[0].CaseID)

	_, env = s.do(t, http.MethodGet, "/api/sessions/"+sid+"/cases", nil)
	require.NoError(t, json.Unmarshal(env.Data, &cases))
	assert.Equal(t, "CASE-000001", cases[0].CaseID)

	w, env := s.do(t, http.MethodGet, "/api/sessions/"+sid+"/cases?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ORDER", env.Error.Code)
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t, llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "analysis", nil
	}))
	sid := s.createSession(t)
	base := "/api/sessions/" + sid

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown session", http.MethodGet, "/api/sessions/nope/cases", nil, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"unknown case", http.MethodGet, base + "/cases/CASE-000404", nil, http.StatusNotFound, "CASE_NOT_FOUND"},
		{"evidence for unknown case", http.MethodPost, base + "/cases/CASE-000404/evidence", gin.H{"evidence": "x"}, http.StatusNotFound, "CASE_NOT_FOUND"},
		{"missing scenario", http.MethodPost, base + "/cases/analyze", gin.H{"language": "Hindi"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"blank scenario", http.MethodPost, base + "/cases/analyze", gin.H{"scenario": "   "}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad export format", http.MethodPost, base + "/cases/CASE-000001/exports", gin.H{"format": "rtf"}, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{"bad job id", http.MethodGet, base + "/jobs/not-a-uuid", nil, http.StatusBadRequest, "INVALID_ID"},
		{"unknown job", http.MethodGet, base + "/jobs/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound, "JOB_NOT_FOUND"},
		{"unknown file", http.MethodGet, base + "/files/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound, "FILE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestInvalidReportConfig(t *testing.T) {
	s := newTestServer(t, llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "analysis", nil
	}))
	sid := s.createSession(t)
	sess, err := s.sessions.Get(sid)
	require.NoError(t, err)
	rec := sess.Cases.Create("theft", "English", "analysis")

	w, env := s.do(t, http.MethodPost, "/api/sessions/"+sid+"/cases/"+rec.CaseID+"/report", gin.H{"prosecution_strength": 140})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REPORT", env.Error.Code)
}

func TestFailedAnalysisJob(t *testing.T) {
	s := newTestServer(t, llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", llm.ErrBlocked
	}))
	sid := s.createSession(t)

	jobID := s.submit(t, "/api/sessions/"+sid+"/cases/analyze", gin.H{"scenario": "theft"})
	job := s.waitJob(t, sid, jobID, "failed")
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "blocked")

	w, env := s.do(t, http.MethodDelete, "/api/sessions/"+sid+"/jobs/"+jobID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "JOB_FINISHED", env.Error.Code)

	_, env = s.do(t, http.MethodGet, "/api/sessions/"+sid+"/cases", nil)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestCancelJobEndpoint(t *testing.T) {
	started := make(chan struct{}, 1)
	s := newTestServer(t, llm.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	}))
	sid := s.createSession(t)

	jobID := s.submit(t, "/api/sessions/"+sid+"/precedents", gin.H{"scenario": "theft"})
	<-started

	w, env := s.do(t, http.MethodDelete, "/api/sessions/"+sid+"/jobs/"+jobID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var job jobView
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, "cancelled", job.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.jobs.Wait(ctx))

	job = s.waitJob(t, sid, jobID, "cancelled")
	assert.Nil(t, job.Result)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "analysis", nil
	}))
	sid := s.createSession(t)

	w, _ := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessions":1`)

	w, env := s.do(t, http.MethodGet, "/api/sessions/"+sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Cases int `json:"cases"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 0, summary.Cases)

	w, _ = s.do(t, http.MethodDelete, "/api/sessions/"+sid, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/sessions/"+sid, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadReferencesValidation(t *testing.T) {
	s := newTestServer(t, llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "analysis", nil
	}))
	sid := s.createSession(t)
	path := "/api/sessions/" + sid + "/references"

	tests := []struct {
		name   string
		files  map[string][]byte
		status int
		code   string
	}{
		{"no files", map[string][]byte{}, http.StatusBadRequest, "MISSING_FILE"},
		{"too many", map[string][]byte{"a.pdf": nil, "b.pdf": nil, "c.pdf": nil}, http.StatusBadRequest, "TOO_MANY_FILES"},
		{"too large", map[string][]byte{"big.pdf": bytes.Repeat([]byte("x"), 2048)}, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"body over cap", map[string][]byte{"huge.pdf": bytes.Repeat([]byte("x"), 2*1024+multipartSlack+1)}, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE"},
		{"not a pdf", map[string][]byte{"notes.txt": []byte("hello")}, http.StatusBadRequest, "INVALID_REFERENCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.files)
			req := httptest.NewRequest(http.MethodPost, path, body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}

	_, env := s.do(t, http.MethodGet, path, nil)
	assert.JSONEq(t, "[]", string(env.Data))
}
