package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/extraction"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/memory"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/model"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/pdftext"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/schema"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/service"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// maxUploadBytes caps PDF uploads.
const maxUploadBytes = 20 << 20

// PipelineHandler handles HTTP requests for the processing pipeline
type PipelineHandler struct {
	pipeline *service.PipelineService
	logger   *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(pipeline *service.PipelineService, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// processRequest is the JSON endpoint body: exactly one channel is expected.
type processRequest struct {
	EmailContent string `json:"email_content"`
	JSONData     string `json:"json_data"`
}

// RegisterRoutes registers all pipeline routes
func (h *PipelineHandler) RegisterRoutes(router chi.Router) {
	router.Post("/process", h.ProcessInput)
	router.Post("/process/pdf", h.ProcessPDF)
	router.Get("/activity", h.ListActivities)
	router.Get("/activity/{activityID}", h.GetActivity)
}

// ProcessInput handles email or JSON event inputs
func (h *PipelineHandler) ProcessInput(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	if ct := r.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "application/json") {
		h.respondWithError(w, http.StatusBadRequest,
			errors.New("unsupported content type: "+ct),
			"Use application/json here; /process/pdf accepts file uploads")
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.EmailContent == "" && req.JSONData == "" {
		h.respondWithError(w, http.StatusBadRequest,
			errors.New("no input provided in JSON body"),
			"Provide email_content or json_data")
		return
	}

	record, err := h.pipeline.Process(ctx, model.RawInput{
		EmailContent: req.EmailContent,
		JSONData:     req.JSONData,
	})
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to process input")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(record, "Input processed successfully"))
	h.logger.Info("Input processed via HTTP",
		util.Int64("activity_id", record.ID),
		util.String("format", string(record.Classification.Format)),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "ProcessInput"),
	)
}

// ProcessPDF handles PDF file uploads
func (h *PipelineHandler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Missing file field")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/pdf") {
		h.respondWithError(w, http.StatusBadRequest,
			errors.New("invalid file type: "+ct),
			"Only PDF files are supported on this endpoint")
		return
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Failed to read upload")
		return
	}

	record, err := h.pipeline.ProcessDocument(ctx, fileBytes)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to process document")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(record, "Document processed successfully"))
	h.logger.Info("Document processed via HTTP",
		util.Int64("activity_id", record.ID),
		util.String("filename", header.Filename),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "ProcessPDF"),
	)
}

// ListActivities returns all recorded activities
func (h *PipelineHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.pipeline.ListActivities(ctx)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to list activities")
		return
	}
	if records == nil {
		records = []model.ActivityRecord{}
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(records, "Activities retrieved successfully"))
}

// GetActivity returns a single activity by id
func (h *PipelineHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idStr := chi.URLParam(r, "activityID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid activity ID format")
		return
	}

	record, err := h.pipeline.GetActivity(ctx, id)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to get activity")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(record, "Activity retrieved successfully"))
}

// Helper Methods

// respondWithJSON sends a JSON response
func (h *PipelineHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError sends an error response
func (h *PipelineHandler) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, errorResponse(err, message))
}

// getStatusCode determines the appropriate HTTP status code for an error.
// Client-input failures map to 4xx; extraction failures are service errors
// and map to 502 so callers see them rather than empty fields.
func (h *PipelineHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, memory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnsupportedInput):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrSchema):
		return http.StatusBadRequest
	case errors.Is(err, pdftext.ErrUnreadable):
		return http.StatusBadRequest
	case errors.Is(err, extraction.ErrPort):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
