package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/deposit-matcher/internal/api/middleware"
	"github.com/dvloznov/deposit-matcher/internal/domain"
	"github.com/dvloznov/deposit-matcher/internal/export"
	"github.com/dvloznov/deposit-matcher/internal/logger"
	"github.com/dvloznov/deposit-matcher/internal/matching"
	"github.com/dvloznov/deposit-matcher/internal/pipeline"
)

// Multipart field names accepted by POST /api/match.
const (
	DepositsField = "deposits"
	NotesField    = "notes"
	KeywordField  = "keyword"
)

// MatchOptions are the request-independent settings of MatchHandler.
type MatchOptions struct {
	MaxUploadBytes int64
	PreviewRows    int
	Location       *time.Location
	// DefaultKeyword applies when the form has no keyword field at all.
	DefaultKeyword string
}

// MatchHandler runs the matching pipeline over two uploaded tables.
type MatchHandler struct {
	opts MatchOptions
	log  zerolog.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(opts MatchOptions, log zerolog.Logger) *MatchHandler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &MatchHandler{opts: opts, log: log}
}

// MatchResponse is the JSON body of a successful run.
type MatchResponse struct {
	RunID            string                      `json:"run_id"`
	Outcome          matching.Outcome            `json:"outcome"`
	Message          string                      `json:"message,omitempty"`
	SharedIdentities []string                    `json:"shared_identities"`
	Previews         pipeline.Previews           `json:"previews"`
	Matches          []domain.MatchedRecord      `json:"matches"`
	Summary          []domain.CurrencySummaryRow `json:"summary"`
}

// Match handles POST /api/match
//
// Without a download query parameter the response is JSON. With
// download=matches or download=summary the file is returned as an attachment
// in the format given by format=csv|xlsx|xls (csv by default).
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	download := r.URL.Query().Get("download")
	if download != "" && download != "matches" && download != "summary" {
		middleware.WriteError(w, http.StatusBadRequest, "download must be 'matches' or 'summary'")
		return
	}
	format := export.FormatCSV
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", v))
			return
		}
		format = f
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	deposits, err := formFile(r, DepositsField)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	notes, err := formFile(r, NotesField)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := pipeline.NewPipelineState(deposits, notes)
	state.Location = h.opts.Location
	state.Keyword = h.opts.DefaultKeyword
	if v, ok := r.MultipartForm.Value[KeywordField]; ok && len(v) > 0 {
		state.Keyword = v[0]
	}

	if err := pipeline.NewMatchPipeline(nil).Execute(ctx, state); err != nil {
		status := statusFor(err)
		log := h.requestLogger(r)
		log.Warn().Err(err).Int("status", status).Str("run_id", state.RunID).Msg("Matching run rejected")
		middleware.WriteError(w, status, errorMessage(err))
		return
	}

	w.Header().Set("X-Run-ID", state.RunID)

	if download != "" {
		h.writeDownload(w, r, state, download, format)
		return
	}

	previews := state.Previews(h.opts.PreviewRows)
	middleware.WriteJSON(w, http.StatusOK, MatchResponse{
		RunID:            state.RunID,
		Outcome:          state.Outcome,
		Message:          state.Outcome.Message(),
		SharedIdentities: nonNil(state.SharedIdentities),
		Previews: pipeline.Previews{
			Deposits: nonNil(previews.Deposits),
			Notes:    nonNil(previews.Notes),
			Matches:  nonNil(previews.Matches),
		},
		Matches: nonNil(state.Matches),
		Summary: nonNil(state.Summary),
	})
}

func (h *MatchHandler) writeDownload(w http.ResponseWriter, r *http.Request, state *pipeline.PipelineState, what string, format export.Format) {
	log := h.requestLogger(r)

	var (
		buf  bytes.Buffer
		name string
		err  error
	)
	if what == "summary" {
		name = format.SummaryFileName()
		err = export.WriteSummary(&buf, format, state.Summary)
	} else {
		name = format.MatchesFileName()
		err = export.WriteMatches(&buf, format, state.Matches)
	}
	if err != nil {
		log.Error().Err(err).Str("run_id", state.RunID).Msg("Failed to render export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Str("run_id", state.RunID).Msg("Failed to write export")
	}
}

// requestLogger prefers the logger the middleware put in the request context,
// which carries the request ID.
func (h *MatchHandler) requestLogger(r *http.Request) zerolog.Logger {
	if log, ok := r.Context().Value(logger.LoggerKey).(zerolog.Logger); ok {
		return log
	}
	return h.log
}

func formFile(r *http.Request, field string) (pipeline.Input, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return pipeline.Input{}, fmt.Errorf("%s file is required", field)
		}
		return pipeline.Input{}, fmt.Errorf("read %s file: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read %s file: %w", field, err)
	}
	return pipeline.Input{Name: header.Filename, Data: data}, nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		malformed   *domain.MalformedInputError
		unsupported *domain.UnsupportedFormatError
	)
	switch {
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps the input error and drops the pipeline step prefix.
func errorMessage(err error) string {
	var (
		malformed   *domain.MalformedInputError
		unsupported *domain.UnsupportedFormatError
	)
	switch {
	case errors.As(err, &unsupported):
		return unsupported.Error()
	case errors.As(err, &malformed):
		return malformed.Error()
	default:
		return "Matching failed"
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
