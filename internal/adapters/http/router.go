package httpadapter

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dkravets/docqa/internal/core/ports"
	"github.com/dkravets/docqa/internal/observability/metrics"
)

type Router struct {
	chat     ports.ChatService
	ingestor ports.DocumentIngestor
	reader   ports.DocumentReader
	metrics  *metrics.HTTPServerMetrics
	limiter  *rateLimiter
	service  string
	logger   *slog.Logger
}

type RouterConfig struct {
	ServiceName    string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(
	chat ports.ChatService,
	ingestor ports.DocumentIngestor,
	reader ports.DocumentReader,
	m *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	cfg RouterConfig,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "api"
	}
	return &Router{
		chat:     chat,
		ingestor: ingestor,
		reader:   reader,
		metrics:  m,
		limiter:  newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		service:  cfg.ServiceName,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.postChat)
	mux.HandleFunc("/v1/companies/", rt.companiesSubtree)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rt.limiter.middleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	CompanyID string `json:"company_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Message    string          `json:"message"`
	References []referenceItem `json:"references"`
}

type referenceItem struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
}

func (rt *Router) postChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.CompanyID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_id is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	start := time.Now()
	answer, err := rt.chat.Ask(r.Context(), req.CompanyID, req.Message)
	if err != nil {
		rt.writeError(w, r, "chat failed", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatObservation(rt.service, len(answer.References), time.Since(start))
	}

	resp := chatResponse{
		Message:    answer.Message,
		References: make([]referenceItem, 0, len(answer.References)),
	}
	for _, ref := range answer.References {
		resp.References = append(resp.References, referenceItem{
			DocumentID: ref.DocumentID,
			Title:      ref.Title,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) companiesSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/companies/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] != "documents" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	rt.uploadDocument(w, r, parts[0])
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, err := rt.parseUpload(r, companyID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	doc, err := rt.ingestor.Upload(r.Context(), req)
	if err != nil {
		rt.writeError(w, r, "upload failed", err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) parseUpload(r *http.Request, companyID string) (ports.IngestRequest, error) {
	req := ports.IngestRequest{CompanyID: companyID}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			return req, errMultipartFile
		}
		req.Title = strings.TrimSpace(r.FormValue("title"))
		if req.Title == "" {
			req.Title = fileHeader.Filename
		}
		req.Filename = fileHeader.Filename
		req.MimeType = fileHeader.Header.Get("Content-Type")
		req.File = file
		return req, nil
	}

	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return req, errInvalidJSON
	}
	req.Title = strings.TrimSpace(body.Title)
	req.Content = body.Content
	return req, nil
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, "get document failed", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error(message,
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
