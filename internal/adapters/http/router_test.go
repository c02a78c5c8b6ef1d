package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkravets/docqa/internal/core/domain"
	"github.com/dkravets/docqa/internal/core/ports"
)

type fakeChat struct {
	answer      *domain.ChatAnswer
	err         error
	companySeen string
	messageSeen string
}

func (f *fakeChat) Ask(_ context.Context, companyID, question string) (*domain.ChatAnswer, error) {
	f.companySeen = companyID
	f.messageSeen = question
	return f.answer, f.err
}

type fakeIngestor struct {
	doc     *domain.Document
	err     error
	reqSeen ports.IngestRequest
}

func (f *fakeIngestor) Upload(_ context.Context, req ports.IngestRequest) (*domain.Document, error) {
	f.reqSeen = req
	return f.doc, f.err
}

type fakeReader struct {
	doc *domain.Document
	err error
}

func (f *fakeReader) GetByID(context.Context, string) (*domain.Document, error) {
	return f.doc, f.err
}

func newTestRouter(chat *fakeChat, ingestor *fakeIngestor, reader *fakeReader) http.Handler {
	rt := NewRouter(chat, ingestor, reader, nil, nil, RouterConfig{ServiceName: "api"})
	return rt.Handler()
}

func TestPostChatOK(t *testing.T) {
	chat := &fakeChat{answer: &domain.ChatAnswer{
		Message: "the answer",
		References: []domain.Reference{
			{DocumentID: "doc-1", Title: "Policy"},
		},
	}}
	handler := newTestRouter(chat, &fakeIngestor{}, &fakeReader{})

	body := `{"company_id":"acme","message":"how much notice?"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if chat.companySeen != "acme" || chat.messageSeen != "how much notice?" {
		t.Fatalf("expected request forwarded, saw company=%q message=%q", chat.companySeen, chat.messageSeen)
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "the answer" || len(resp.References) != 1 || resp.References[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPostChatValidation(t *testing.T) {
	handler := newTestRouter(&fakeChat{}, &fakeIngestor{}, &fakeReader{})

	cases := []string{
		`not json`,
		`{"company_id":"","message":"q"}`,
		`{"company_id":"acme","message":"  "}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestPostChatMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(&fakeChat{}, &fakeIngestor{}, &fakeReader{})

	req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestPostChatTemporaryFailureMapsTo503(t *testing.T) {
	chat := &fakeChat{err: domain.WrapError(domain.ErrTemporary, "chat", errors.New("breaker open"))}
	handler := newTestRouter(chat, &fakeIngestor{}, &fakeReader{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"company_id":"acme","message":"q"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestUploadDocumentJSON(t *testing.T) {
	ingestor := &fakeIngestor{doc: &domain.Document{ID: "doc-1", Status: domain.StatusUploaded}}
	handler := newTestRouter(&fakeChat{}, ingestor, &fakeReader{})

	body := `{"title":"Policy","content":"Employees must give notice."}`
	req := httptest.NewRequest(http.MethodPost, "/v1/companies/acme/documents", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if ingestor.reqSeen.CompanyID != "acme" || ingestor.reqSeen.Title != "Policy" {
		t.Fatalf("unexpected ingest request: %+v", ingestor.reqSeen)
	}
}

func TestUploadDocumentMultipart(t *testing.T) {
	ingestor := &fakeIngestor{doc: &domain.Document{ID: "doc-1"}}
	handler := newTestRouter(&fakeChat{}, ingestor, &fakeReader{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "handbook.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("pdf bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("title", "Handbook"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/companies/acme/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if ingestor.reqSeen.Title != "Handbook" || ingestor.reqSeen.Filename != "handbook.pdf" {
		t.Fatalf("unexpected ingest request: %+v", ingestor.reqSeen)
	}
	if ingestor.reqSeen.File == nil {
		t.Fatalf("expected file reader forwarded")
	}
}

func TestUploadDocumentBadSubtreePath(t *testing.T) {
	handler := newTestRouter(&fakeChat{}, &fakeIngestor{}, &fakeReader{})

	req := httptest.NewRequest(http.MethodPost, "/v1/companies/acme/settings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	reader := &fakeReader{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id=missing"))}
	handler := newTestRouter(&fakeChat{}, &fakeIngestor{}, reader)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetDocumentOK(t *testing.T) {
	reader := &fakeReader{doc: &domain.Document{ID: "doc-1", Title: "Policy", Status: domain.StatusReady}}
	handler := newTestRouter(&fakeChat{}, &fakeIngestor{}, reader)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "doc-1") {
		t.Fatalf("expected document payload, got %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&fakeChat{}, &fakeIngestor{}, &fakeReader{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	handler := newTestRouter(&fakeChat{}, &fakeIngestor{}, &fakeReader{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a generated request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "fixed-id" {
		t.Fatalf("expected the incoming request id echoed, got %q", rec.Header().Get(requestIDHeader))
	}
}

func TestRateLimitExceeded(t *testing.T) {
	rt := NewRouter(&fakeChat{}, &fakeIngestor{}, &fakeReader{}, nil, nil, RouterConfig{
		ServiceName:    "api",
		RateLimitRPS:   1,
		RateLimitBurst: 1,
	})
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", rec.Code)
	}

	// A different client IP keeps its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected other client allowed, got %d", rec.Code)
	}
}
