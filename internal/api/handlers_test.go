package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"aiResume/internal/drafts"
	"aiResume/internal/export"
	"aiResume/internal/generation"
	"aiResume/internal/resume"
	"aiResume/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var stubPDF = []byte("%PDF-1.4\n" + strings.Repeat("1 0 obj << /Type /Page >> endobj\n", 8) + "%%EOF\n")

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) GenerateContent(context.Context, string) (string, error) {
	g.calls++
	return g.text, g.err
}

func (g *stubGenerator) Close() error { return nil }

type stubScanner struct {
	clean bool
	err   error
}

func (s stubScanner) Scan(r io.Reader) (bool, error) {
	_, _ = io.Copy(io.Discard, r)
	return s.clean, s.err
}

type testServer struct {
	router       *gin.Engine
	apiKey       string
	gen          *stubGenerator
	factoryCalls int
	renderErr    error
	drafts       *drafts.MemoryStore
	generated    *storage.LocalStore
	uploads      *storage.LocalStore
	handler      *Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Chdir(t.TempDir())
	require.NoError(t, RegisterValidators())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		apiKey: "test-key",
		gen:    &stubGenerator{text: "<h1>Jane Doe</h1><p>Go engineer</p>"},
		drafts: drafts.NewMemoryStore(time.Hour),
	}

	var err error
	ts.generated, err = storage.NewLocalStore("generated")
	require.NoError(t, err)
	ts.uploads, err = storage.NewLocalStore("uploads")
	require.NoError(t, err)

	genService := generation.NewService(
		func() string { return ts.apiKey },
		func(context.Context, string) (generation.Generator, error) {
			ts.factoryCalls++
			return ts.gen, nil
		},
		time.Second,
		logger,
	)
	renderer := export.RendererFunc(func(context.Context, string) ([]byte, error) {
		if ts.renderErr != nil {
			return nil, ts.renderErr
		}
		return stubPDF, nil
	})

	ts.handler = &Handler{
		Generator:      genService,
		Exporter:       export.NewService(ts.generated, renderer, time.Second, logger),
		Generated:      ts.generated,
		Uploads:        ts.uploads,
		Drafts:         ts.drafts,
		MaxUploadBytes: 1 << 10,
	}
	ts.router, err = NewRouter(logger, nil)
	require.NoError(t, err)
	RegisterRoutes(ts.router, ts.handler, nil)
	return ts
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w, decodeBody(t, w)
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return out
}

func resumeBody() map[string]any {
	return map[string]any{
		"personalInfo": map[string]any{
			"fullName":   "Jane Doe",
			"email":      "jane@example.com",
			"phone":      "+1 555 0100",
			"location":   "Berlin",
			"summary":    "Backend engineer",
			"education":  "BSc CS",
			"skills":     "Go",
			"experience": "5 years",
		},
		"jobRequirements": "Senior Go engineer",
		"template":        "modern",
	}
}

func coverLetterBody() map[string]any {
	return map[string]any{
		"personalInfo": map[string]any{
			"fullName": "Jane Doe",
			"email":    "jane@example.com",
			"phone":    "+1 555 0100",
			"location": "Berlin",
		},
		"jobRequirements":    "Senior Go engineer",
		"companyInfo":        map[string]any{"companyName": "Acme"},
		"relevantExperience": "Payments platform",
		"template":           "formal",
	}
}

// setField blanks a field wherever it lives in a request body.
func setField(body map[string]any, field, value string) {
	switch field {
	case "jobRequirements", "relevantExperience":
		body[field] = value
	case "companyName":
		body["companyInfo"].(map[string]any)[field] = value
	default:
		body["personalInfo"].(map[string]any)[field] = value
	}
}

func TestGenerate_ConfigurationErrorWithoutNetworkCall(t *testing.T) {
	for _, key := range []string{"", generation.PlaceholderAPIKey} {
		for path, body := range map[string]map[string]any{
			"/api/generate-resume":       resumeBody(),
			"/api/generate-cover-letter": coverLetterBody(),
		} {
			ts := newTestServer(t)
			ts.apiKey = key

			w, resp := ts.postJSON(t, path, body)
			assert.Equal(t, http.StatusInternalServerError, w.Code, "path=%s key=%q", path, key)
			assert.Equal(t, false, resp["success"])
			assert.Contains(t, resp["error"], "API key not configured")
			assert.Zero(t, ts.factoryCalls)
			assert.Zero(t, ts.gen.calls)
		}
	}
}

func TestGenerate_CredentialReadPerRequest(t *testing.T) {
	ts := newTestServer(t)
	ts.apiKey = ""
	w, _ := ts.postJSON(t, "/api/generate-resume", resumeBody())
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	ts.apiKey = "rotated-key"
	w, _ = ts.postJSON(t, "/api/generate-resume", resumeBody())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerate_EachMissingFieldRejectedBeforeNetworkCall(t *testing.T) {
	cases := []struct {
		path    string
		docType resume.DocType
		body    func() map[string]any
	}{
		{"/api/generate-resume", resume.DocTypeResume, resumeBody},
		{"/api/generate-cover-letter", resume.DocTypeCoverLetter, coverLetterBody},
	}
	for _, tc := range cases {
		for _, field := range resume.RequiredFields(tc.docType) {
			ts := newTestServer(t)
			body := tc.body()
			setField(body, field, "   ")

			w, resp := ts.postJSON(t, tc.path, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "field=%s", field)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, []any{field}, resp["missingFields"], "field=%s", field)
			assert.Equal(t, "Please fill in all required fields: "+field, resp["error"])
			assert.Zero(t, ts.factoryCalls, "field=%s", field)
		}
	}
}

func TestGenerate_ReportsAllMissingFieldsAtOnce(t *testing.T) {
	ts := newTestServer(t)
	w, resp := ts.postJSON(t, "/api/generate-cover-letter", map[string]any{
		"personalInfo": map[string]any{"fullName": "Jane"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"email", "phone", "location", "companyName", "jobRequirements", "relevantExperience"}, resp["missingFields"])
}

func TestGenerate_SuccessStoresDraft(t *testing.T) {
	ts := newTestServer(t)
	ts.gen.text = "```html\n<html><body><h1>Jane Doe</h1></body></html>\n```"

	w, resp := ts.postJSON(t, "/api/generate-resume", resumeBody())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "<h1>Jane Doe</h1>", resp["content"])
	assert.Equal(t, "Resume generated successfully!", resp["message"])
	assert.Equal(t, "resume_Jane_Doe", resp["filename"])
	assert.Equal(t, 1, ts.gen.calls)

	draftID, _ := resp["draftId"].(string)
	require.NotEmpty(t, draftID)

	dw := ts.get(t, "/api/drafts/"+draftID)
	require.Equal(t, http.StatusOK, dw.Code)
	draft := decodeBody(t, dw)["draft"].(map[string]any)
	assert.Equal(t, "<h1>Jane Doe</h1>", draft["content"])
	assert.Equal(t, "resume", draft["docType"])
}

func TestGenerate_CoverLetterMessage(t *testing.T) {
	ts := newTestServer(t)
	w, resp := ts.postJSON(t, "/api/generate-cover-letter", coverLetterBody())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cover letter generated successfully!", resp["message"])
	assert.Equal(t, "cover_letter_Jane_Doe", resp["filename"])
}

func TestGenerate_UpstreamFailureTaxonomy(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{errors.New("API key not valid. Please pass a valid API key."), http.StatusBadGateway, "Invalid API key. Please check your Gemini API key."},
		{&googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}, http.StatusTooManyRequests, "API quota exceeded. Please try again later."},
		{errors.New("socket hang up"), http.StatusBadGateway, "Failed to generate resume"},
	}
	for _, tc := range cases {
		ts := newTestServer(t)
		ts.gen.err = tc.err

		w, resp := ts.postJSON(t, "/api/generate-resume", resumeBody())
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, tc.message, resp["error"])
		assert.Equal(t, tc.err.Error(), resp["details"])
		assert.Equal(t, 1, ts.gen.calls)
	}
}

func TestGenerate_MalformedBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/generate-resume", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportPDF_ConcreteScenario(t *testing.T) {
	ts := newTestServer(t)

	w, resp := ts.postJSON(t, "/api/export-pdf", map[string]any{
		"content":  "<h1>Test</h1>",
		"filename": "resume_Jane_Doe",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "generated/resume_Jane_Doe.pdf", resp["filePath"])
	assert.Equal(t, "/download/resume_Jane_Doe.pdf", resp["downloadUrl"])
	assert.Equal(t, "PDF exported successfully!", resp["message"])

	st, err := os.Stat(filepath.Join("generated", "resume_Jane_Doe.pdf"))
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(64))
}

func TestExportDOCX_StripsMarkup(t *testing.T) {
	ts := newTestServer(t)

	w, resp := ts.postJSON(t, "/api/export-docx", map[string]any{
		"content":  "<p>Hello <b>World</b></p>",
		"filename": "cover_letter_Jane_Doe",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "generated/cover_letter_Jane_Doe.docx", resp["filePath"])
	assert.Equal(t, "Word document exported successfully!", resp["message"])

	data, err := os.ReadFile(filepath.Join("generated", "cover_letter_Jane_Doe.docx"))
	require.NoError(t, err)
	paragraphs, err := export.DocumentParagraphs(data)
	require.NoError(t, err)
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "Hello World", paragraphs[1])
	assert.NotContains(t, paragraphs[1], "<")
}

func TestExport_RenderFailureLeavesNoFile(t *testing.T) {
	ts := newTestServer(t)
	ts.renderErr = errors.New("browser crashed")

	w, resp := ts.postJSON(t, "/api/export-pdf", map[string]any{"content": "<h1>Test</h1>", "filename": "resume_Jane_Doe"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Failed to export PDF", resp["error"])

	entries, err := os.ReadDir("generated")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_RejectsBadInput(t *testing.T) {
	ts := newTestServer(t)
	for _, body := range []map[string]any{
		{"content": "<p>x</p>", "filename": "../etc/passwd"},
		{"content": "<p>x</p>", "filename": "a/b"},
		{"content": "", "filename": "resume"},
		{"content": "<p>x</p>"},
		{"draftId": "not-a-uuid"},
	} {
		w, resp := ts.postJSON(t, "/api/export-pdf", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body=%v", body)
		assert.Equal(t, false, resp["success"])
	}
}

func TestExport_FromDraft(t *testing.T) {
	ts := newTestServer(t)
	_, gen := ts.postJSON(t, "/api/generate-resume", resumeBody())
	draftID := gen["draftId"].(string)

	w, resp := ts.postJSON(t, "/api/export-docx", map[string]any{"draftId": draftID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "generated/resume_Jane_Doe.docx", resp["filePath"])

	w, resp = ts.postJSON(t, "/api/export-pdf", map[string]any{"draftId": draftID, "filename": "custom_name"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "generated/custom_name.pdf", resp["filePath"])

	w, _ = ts.postJSON(t, "/api/export-pdf", map[string]any{"draftId": "2b1e6a35-5d55-4c3e-9d8e-1f0f3c2b9a10"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type recordingCleanup struct {
	names []string
}

func (r *recordingCleanup) Schedule(_ context.Context, filename, _ string) error {
	r.names = append(r.names, filename)
	return nil
}

func TestExport_SchedulesCleanup(t *testing.T) {
	ts := newTestServer(t)
	rec := &recordingCleanup{}
	ts.handler.Cleanup = rec

	w, _ := ts.postJSON(t, "/api/export-pdf", map[string]any{"content": "<p>x</p>", "filename": "resume_A"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"resume_A.pdf"}, rec.names)
}

func TestDownload_ExactBytesAndNotFound(t *testing.T) {
	ts := newTestServer(t)
	payload := []byte("%PDF-1.7 exact bytes \x00\x01\x02")
	require.NoError(t, os.WriteFile(filepath.Join("generated", "resume_Jane_Doe.pdf"), payload, 0o644))

	w := ts.get(t, "/download/resume_Jane_Doe.pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.Bytes())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "resume_Jane_Doe.pdf")

	w = ts.get(t, "/download/missing.pdf")
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "File not found", resp["error"])
}

func TestDownload_TraversalIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, os.WriteFile("secret.txt", []byte("secret"), 0o644))

	for _, path := range []string{"/download/..%2Fsecret.txt", "/download/..", "/download/.hidden", "/download/%2e%2e%2fsecret.txt"} {
		w := ts.get(t, path)
		assert.Equal(t, http.StatusNotFound, w.Code, "path=%s", path)
		assert.NotContains(t, w.Body.String(), "secret\n")
		assert.NotEqual(t, "secret", w.Body.String())
	}
}

func TestDrafts_UnknownIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	w := ts.get(t, "/api/drafts/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Draft not found", decodeBody(t, w)["error"])
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (ts *testServer) upload(t *testing.T, filename string, content []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w, decodeBody(t, w)
}

func TestUpload_StoresSanitizedName(t *testing.T) {
	ts := newTestServer(t)
	ts.handler.Scanner = stubScanner{clean: true}

	w, resp := ts.upload(t, "../My CV.pdf", []byte("%PDF-1.4 cv"))
	require.Equal(t, http.StatusOK, w.Code)
	name := resp["filename"].(string)
	assert.True(t, strings.HasSuffix(name, "_My_CV.pdf"), name)
	assert.True(t, storage.ValidName(name))

	stored, err := os.ReadFile(filepath.Join("uploads", name))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 cv", string(stored))
}

func TestDownload_DoesNotServeUploads(t *testing.T) {
	ts := newTestServer(t)

	w, resp := ts.upload(t, "cv.pdf", []byte("%PDF-1.4 private"))
	require.Equal(t, http.StatusOK, w.Code)
	name := resp["filename"].(string)

	dw := ts.get(t, "/download/"+name)
	assert.Equal(t, http.StatusNotFound, dw.Code)
	assert.NotContains(t, dw.Body.String(), "private")
	assert.Equal(t, "File not found", decodeBody(t, dw)["error"])
}

func TestUpload_RejectsInfectedAndOversized(t *testing.T) {
	ts := newTestServer(t)
	ts.handler.Scanner = stubScanner{clean: false}
	w, _ := ts.upload(t, "eicar.txt", []byte("X5O!P%@AP"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.handler.Scanner = nil
	w, _ = ts.upload(t, "big.pdf", bytes.Repeat([]byte("a"), 2<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	entries, err := os.ReadDir("uploads")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
