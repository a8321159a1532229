package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/engine"
	"github.com/sells-group/invoice-cli/internal/store"
)

const structuredTxt = "HTTS\tC/N\tPART\tPART_DESC\tquantity\tAMT\tWEIGHT\n" +
	"8471.30\tCN\tSKU1\tWidget\t10\t2.50\t5.0\n"

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	eng, err := engine.New(&config.Config{
		Detect:    config.DetectConfig{MinStructuredColumns: 3},
		Normalize: config.NormalizeConfig{DefaultQtyUnit: "EA"},
		Pairing:   config.PairingConfig{MinSimilarity: 0.5},
		Aggregate: config.AggregateConfig{TopHTS: 10},
		PDF:       config.PDFConfig{Provider: "internal"},
		Workspace: config.WorkspaceConfig{
			UploadsDir:     filepath.Join(root, "uploads"),
			OutputsDir:     filepath.Join(root, "outputs"),
			RetentionHours: 168,
		},
	})
	require.NoError(t, err)
	return New(eng, config.ServerConfig{
		MaxUploadMB:    16,
		AllowedOrigins: []string{"*"},
	}), root
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "invoice-cli", body["service"])
}

func TestUploadAndProcess(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	// Upload
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "shipment.txt")
	require.NoError(t, err)
	fmt.Fprint(fw, structuredTxt)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var uploaded struct {
		Files []store.StoredFile `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	require.Len(t, uploaded.Files, 1)

	// Process
	rec = doJSON(t, router, http.MethodPost, "/api/process", map[string]any{
		"files": []map[string]string{{
			"filename": uploaded.Files[0].Filename,
			"path":     uploaded.Files[0].Path,
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Items        []map[string]any `json:"items"`
		DownloadName string           `json:"download_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Items, 1)
	require.NotEmpty(t, res.DownloadName)

	// Download the generated artifact
	req = httptest.NewRequest(http.MethodGet, "/api/download/"+res.DownloadName, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "SKU,DESCRIPTION,HTS,"))
}

func TestProcessNoFiles(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/api/process", map[string]any{
		"files": []map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestProcessBadFormat(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/api/process", map[string]any{
		"files":  []map[string]string{{"path": "x.txt"}},
		"format": "docx",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessInvalidBody(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPairsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/api/pairs", map[string]any{
		"files": []map[string]string{
			{"filename": "invoice_100.pdf", "path": "invoice_100.pdf"},
			{"filename": "invoice_100_data.txt", "path": "invoice_100_data.txt"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Pairs []map[string]any `json:"pairs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Pairs, 1)
}

func TestPreviewEndpoint(t *testing.T) {
	s, root := newTestServer(t)

	path := filepath.Join(root, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte(structuredTxt), 0o644))

	rec := doJSON(t, s.Router(), http.MethodPost, "/api/preview", map[string]any{
		"file": map[string]string{"filename": "sample.txt", "path": path},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Format  string   `json:"format"`
		Columns []string `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "structured-text", res.Format)
	assert.Contains(t, res.Columns, "HTTS")
}

func TestDownloadRejectsTraversal(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/download/..%2Fsecret.csv", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestDownloadMissing(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/download/nothere.csv", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCleanupEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Router(), http.MethodPost, "/api/cleanup", map[string]any{
		"max_age_hours": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 0, res["removed"])
}
