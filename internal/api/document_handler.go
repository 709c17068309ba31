package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/extract"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/service"
)

// MaxUploadBytes bounds raw document uploads.
const MaxUploadBytes = 20 << 20

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService service.DocumentService, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger.With("component", "document_handler"),
	}
}

// CreateDocument handles POST /api/documents.
//
// A JSON body carries {file_name, text}. Any other content type is treated as
// a raw file upload whose text is extracted; the name comes from the
// file_name query parameter.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var (
		fileName, text string
		err            error
	)
	if isJSON(r) {
		fileName, text, err = h.decodeCreateRequest(r)
	} else {
		fileName, text, err = h.readUpload(w, r)
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	doc, err := h.documentService.CreateDocumentAndEnqueue(r.Context(), userID, fileName, text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, documentToResponse(doc))
}

func (h *DocumentHandler) decodeCreateRequest(r *http.Request) (string, string, error) {
	var req CreateDocumentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return "", "", err
		}
		return "", "", errors.Join(errInvalidRequestFormat, err)
	}
	if err := shared.ValidateRequest(&req); err != nil {
		return "", "", err
	}
	return req.FileName, req.Text, nil
}

func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		return "", "", err
	}

	text, err := extract.Text(data)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("upload rejected",
			"error", err,
			"detected_type", extract.Detect(data),
			"size", len(data))
		return "", "", err
	}

	fileName := r.URL.Query().Get("file_name")
	if fileName != "" {
		fileName = path.Base(fileName)
	}
	return fileName, text, nil
}

// GetDocument handles GET /api/documents/{id}.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.GetDocument(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, documentToResponse(doc))
}

// ListDocuments handles GET /api/documents?limit=N.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", service.DefaultHistoryLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	docs, err := h.documentService.ListHistory(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := HistoryResponse{Documents: make([]DocumentSummaryResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, documentToSummary(doc))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ExtendDocument handles POST /api/documents/{id}/extend. The body is
// optional; without a unit every unit may receive new flashcards.
func (h *DocumentHandler) ExtendDocument(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ExtendDocumentRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleAPIError(w, r, errors.Join(errInvalidRequestFormat, err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	doc, err := h.documentService.ExtendDocument(r.Context(), userID, id, req.Unit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, documentToResponse(doc))
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
