package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Stars1233/pollinations/internal/generation"
	"github.com/Stars1233/pollinations/internal/job"
	"github.com/Stars1233/pollinations/internal/provider"
	"github.com/Stars1233/pollinations/internal/storage"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service            *job.Service
	registry           *provider.Registry
	store              storage.Storage
	validator          *validator.Validate
	logger             *slog.Logger
	enableAsyncProcess bool
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithAsyncProcessing enables or disables background processing.
// When disabled, CreateJob only creates the job and returns immediately
// without starting background processing.
func WithAsyncProcessing(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.enableAsyncProcess = enabled
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.Service, registry *provider.Registry, store storage.Storage, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:            service,
		registry:           registry,
		store:              store,
		validator:          validator.New(),
		logger:             logger,
		enableAsyncProcess: true, // Default to enabled
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Models handles GET /models requests.
func (h *Handlers) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelsResponse{Models: h.registry.Models()})
}

// Generate handles POST /generate requests. It runs the full generation
// synchronously and responds with the video bytes, so the request can stay
// open for minutes.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	_, result, err := h.service.Process(r.Context(), req)
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Bytes)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Bytes); err != nil {
		h.logger.Error("failed to write video response",
			slog.String("error", err.Error()),
		)
	}
}

// CreateJob handles POST /jobs requests.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	// Reject unknown models before accepting the job so the caller gets
	// an immediate 400 instead of a failed async job.
	if _, err := h.registry.Resolve(req.Model); err != nil {
		writeError(w, http.StatusBadRequest, "unknown model: "+req.Model, "UNKNOWN_MODEL")
		return
	}

	createdJob, err := h.service.CreateJob(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create job",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create job", "JOB_CREATION_FAILED")
		return
	}

	// Start processing in background with a detached context
	// Use context.WithoutCancel to prevent cancellation when the request ends
	if h.enableAsyncProcess {
		go func(ctx context.Context, jb *job.Job, genReq provider.Request) {
			if _, runErr := h.service.Run(ctx, jb, genReq); runErr != nil {
				h.logger.Error("background processing failed",
					slog.String("job_id", jb.ID),
					slog.String("error", runErr.Error()),
				)
			}
		}(context.WithoutCancel(r.Context()), createdJob, req)
	}

	h.logger.Info("job created",
		slog.String("job_id", createdJob.ID),
		slog.String("model", req.Model),
	)

	writeJSON(w, http.StatusAccepted, CreateJobResponse{
		ID:     createdJob.ID,
		Status: string(createdJob.Status),
	})
}

// GetJob handles GET /jobs/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	foundJob, ok := h.findJob(w, r)
	if !ok {
		return
	}

	resp := JobResponse{
		ID:       foundJob.ID,
		Model:    foundJob.Model,
		Status:   string(foundJob.Status),
		Progress: foundJob.Progress,
		Phase:    foundJob.Phase,
		Message:  foundJob.Message,
		Error:    foundJob.Error,
	}
	if foundJob.Status == job.StatusSucceeded {
		resp.VideoURL = foundJob.ArtifactURL
		resp.DurationSec = foundJob.DurationSec
		resp.VideoSeconds = foundJob.VideoSeconds
		resp.AudioSeconds = foundJob.AudioSeconds
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetJobResult handles GET /jobs/{id}/result requests, streaming the
// finished video for a succeeded job.
func (h *Handlers) GetJobResult(w http.ResponseWriter, r *http.Request) {
	foundJob, ok := h.findJob(w, r)
	if !ok {
		return
	}

	if foundJob.Status != job.StatusSucceeded {
		writeError(w, http.StatusConflict, "job has no result yet", "RESULT_NOT_READY")
		return
	}
	if foundJob.ArtifactPath == "" {
		writeError(w, http.StatusNotFound, "artifact no longer available", "ARTIFACT_GONE")
		return
	}

	rc, err := h.store.OpenArtifact(r.Context(), foundJob.ArtifactPath)
	if err != nil {
		h.logger.Error("failed to open artifact",
			slog.String("job_id", foundJob.ID),
			slog.String("path", foundJob.ArtifactPath),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusNotFound, "artifact no longer available", "ARTIFACT_GONE")
		return
	}
	defer rc.Close()

	mimeType := foundJob.MIMEType
	if mimeType == "" {
		mimeType = generation.VideoMIMEType
	}
	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("failed to stream artifact",
			slog.String("job_id", foundJob.ID),
			slog.String("error", err.Error()),
		)
	}
}

// decodeRequest parses and validates the shared generation request body.
// On failure it writes the error response and returns ok=false.
func (h *Handlers) decodeRequest(w http.ResponseWriter, r *http.Request) (provider.Request, bool) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return provider.Request{}, false
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return provider.Request{}, false
	}

	genReq := provider.Request{
		Model:       req.Model,
		Prompt:      req.Prompt,
		DurationSec: req.Duration,
		AspectRatio: req.AspectRatio,
		Resolution:  req.Resolution,
		Audio:       req.Audio,
	}
	if req.Image != "" {
		genReq.Images = []string{req.Image}
	}
	return genReq, true
}

// findJob resolves the {id} path value to a job, writing the error
// response on failure.
func (h *Handlers) findJob(w http.ResponseWriter, r *http.Request) (*job.Job, bool) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return nil, false
	}

	foundJob, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return nil, false
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job", "JOB_FETCH_FAILED")
		return nil, false
	}
	return foundJob, true
}

// writeGenerationError maps a generation failure onto the HTTP response.
func (h *Handlers) writeGenerationError(w http.ResponseWriter, err error) {
	status := generation.StatusFor(err)
	code := errorCodeFor(generation.KindFor(err))
	if status >= http.StatusInternalServerError {
		h.logger.Error("generation failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, status, err.Error(), code)
}

// errorCodeFor maps a generation error kind to the wire error code.
func errorCodeFor(kind generation.Kind) string {
	switch kind {
	case generation.KindValidation:
		return "VALIDATION_ERROR"
	case generation.KindSubmission:
		return "SUBMISSION_REJECTED"
	case generation.KindTimeout:
		return "POLL_TIMEOUT"
	case generation.KindDownload:
		return "DOWNLOAD_FAILED"
	default:
		return "PROVIDER_ERROR"
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
