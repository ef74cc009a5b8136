package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"resumatch-gateway/internal/analysis"
	"resumatch-gateway/internal/llm"
)

type mockAnalyzer struct {
	report  *analysis.Report
	err     error
	calls   int
	lastDoc []byte
	lastJD  string
}

func (m *mockAnalyzer) Analyze(_ context.Context, doc []byte, jd string) (*analysis.Report, error) {
	m.calls++
	m.lastDoc = doc
	m.lastJD = jd
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func multipartRequest(t *testing.T, file []byte, jd string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if file != nil {
		part, err := writer.CreateFormFile("file", "resume.pdf")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.WriteField("jd", jd); err != nil {
		t.Fatalf("write jd field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/check/analyze", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, rr.Body.String())
	}
	return resp.Error
}

func TestAnalyzeSuccess(t *testing.T) {
	mock := &mockAnalyzer{
		report: &analysis.Report{
			MatchScore: 88,
			Summary:    "great fit",
		},
	}
	h := NewAnalyzeHandler(mock)

	req := multipartRequest(t, []byte("%PDF-1.4 resume"), "Go backend engineer")
	rr := httptest.NewRecorder()
	h.Analyze(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	var report analysis.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.MatchScore != 88 {
		t.Fatalf("unexpected match_score: %d", report.MatchScore)
	}

	if mock.calls != 1 {
		t.Fatalf("expected one pipeline call, got %d", mock.calls)
	}
	if string(mock.lastDoc) != "%PDF-1.4 resume" || mock.lastJD != "Go backend engineer" {
		t.Fatalf("handler passed wrong inputs: doc=%q jd=%q", mock.lastDoc, mock.lastJD)
	}
}

func TestAnalyzeCachedFlagPassthrough(t *testing.T) {
	mock := &mockAnalyzer{
		report: &analysis.Report{MatchScore: 70, Cached: true},
	}
	h := NewAnalyzeHandler(mock)

	rr := httptest.NewRecorder()
	h.Analyze(rr, multipartRequest(t, []byte("doc"), "jd"))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cached, ok := body["_is_cached"].(bool); !ok || !cached {
		t.Fatalf("expected _is_cached=true in response, got %v", body["_is_cached"])
	}
}

func TestAnalyzeFreshOmitsCachedFlag(t *testing.T) {
	mock := &mockAnalyzer{report: &analysis.Report{MatchScore: 70}}
	h := NewAnalyzeHandler(mock)

	rr := httptest.NewRecorder()
	h.Analyze(rr, multipartRequest(t, []byte("doc"), "jd"))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, present := body["_is_cached"]; present {
		t.Fatalf("fresh response must omit _is_cached, got %v", body["_is_cached"])
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	mock := &mockAnalyzer{report: &analysis.Report{}}
	h := NewAnalyzeHandler(mock)

	rr := httptest.NewRecorder()
	h.Analyze(rr, multipartRequest(t, nil, "jd"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "no file uploaded" {
		t.Fatalf("unexpected error message: %q", msg)
	}
	if mock.calls != 0 {
		t.Fatalf("pipeline must not run without a file")
	}
}

func TestAnalyzeEmptyFile(t *testing.T) {
	mock := &mockAnalyzer{report: &analysis.Report{}}
	h := NewAnalyzeHandler(mock)

	rr := httptest.NewRecorder()
	h.Analyze(rr, multipartRequest(t, []byte{}, "jd"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if mock.calls != 0 {
		t.Fatalf("pipeline must not run on an empty file")
	}
}

func TestAnalyzeErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unreadable document", analysis.ErrUnreadableDocument, http.StatusBadRequest},
		{"misconfigured service", llm.ErrNotConfigured, http.StatusInternalServerError},
		{"malformed output", analysis.ErrMalformedOutput, http.StatusInternalServerError},
		{"upstream failure", errors.New("llmclient: upstream 503"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAnalyzeHandler(&mockAnalyzer{err: tc.err})

			rr := httptest.NewRecorder()
			h.Analyze(rr, multipartRequest(t, []byte("doc"), "jd"))

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if msg := decodeError(t, rr); msg == "" {
				t.Fatalf("error envelope missing message")
			}
		})
	}
}
