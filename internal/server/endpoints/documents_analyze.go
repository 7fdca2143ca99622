package endpoints

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/estate/internal/analyzer"
	"github.com/jackzampolin/estate/internal/api"
	"github.com/jackzampolin/estate/internal/estate"
	"github.com/jackzampolin/estate/internal/pdftext"
	"github.com/jackzampolin/estate/internal/providers"
	"github.com/jackzampolin/estate/internal/svcctx"
)

const (
	maxUploadBytes  = 64 << 20
	maxFormMemory   = 32 << 20
	uploadFormField = "file"
)

// AnalyzeResponse is returned by POST /api/documents/analyze.
type AnalyzeResponse struct {
	Info        estate.Info `json:"info"`
	SourceChain string      `json:"source_chain"`
	RequestID   string      `json:"request_id"`
}

// AnalyzeDocumentEndpoint handles POST /api/documents/analyze with a multipart PDF upload.
type AnalyzeDocumentEndpoint struct{}

var _ api.Endpoint = (*AnalyzeDocumentEndpoint)(nil)

func (e *AnalyzeDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/analyze", e.handler
}

func (e *AnalyzeDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Analyze an estate planning PDF
//	@Description	Extracts client name, address, date, title, summary and page count from an uploaded PDF
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			file		formData	file	true	"PDF document"
//	@Param			use_local	formData	bool	false	"Prefer the configured local model"
//	@Success		200	{object}	AnalyzeResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/documents/analyze [post]
func (e *AnalyzeDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	logger := svcctx.LoggerFrom(r.Context())
	if logger == nil {
		logger = slog.Default()
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, fh, err := r.FormFile(uploadFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer src.Close()

	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", fh.Filename))
		return
	}

	useLocal, _ := strconv.ParseBool(r.FormValue("use_local"))

	svc := svcctx.AnalyzerFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "analyzer not initialized")
		return
	}
	homeDir := svcctx.HomeFrom(r.Context())
	if homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "home directory not initialized")
		return
	}

	dest := homeDir.UploadPath(uuid.NewString(), fh.Filename)
	if err := saveUpload(src, dest); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save upload: %v", err))
		return
	}
	defer func() {
		if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove upload", "path", dest, "error", err)
		}
	}()

	logger.Info("document uploaded", "filename", fh.Filename, "size", fh.Size, "use_local", useLocal)

	info, report, err := svc.Analyze(r.Context(), dest, useLocal)
	if err != nil {
		status, msg := analyzeErrorStatus(err)
		logger.Error("document analysis failed",
			"filename", fh.Filename,
			"req_id", report.RequestID,
			"status", status,
			"error", err,
		)
		writeJSON(w, status, ErrorResponse{Error: msg, RequestID: report.RequestID})
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Info:        info,
		SourceChain: report.SourceChain,
		RequestID:   report.RequestID,
	})
}

func saveUpload(src io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dest)
		return err
	}
	return dst.Close()
}

// analyzeErrorStatus maps pipeline errors to an HTTP status and client message.
func analyzeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, estate.ErrSchemaValidation):
		return http.StatusUnprocessableEntity, "Model returned invalid JSON"
	case errors.Is(err, pdftext.ErrNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, pdftext.ErrExtraction):
		return http.StatusUnprocessableEntity, "Could not read PDF"
	case errors.Is(err, providers.ErrRemoteService):
		if re, ok := providers.IsRemoteError(err); ok && re.RateLimited() {
			return http.StatusBadGateway, "LLM service rate limit exceeded, try again later"
		}
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, analyzer.ErrNoProvider):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (e *AnalyzeDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var useLocal bool
	cmd := &cobra.Command{
		Use:   "analyze <pdf>",
		Short: "Upload a PDF to the server for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pdftext.ResolvePath(args[0])
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp AnalyzeResponse
			err = client.PostFile(cmd.Context(), "/api/documents/analyze", uploadFormField, path,
				map[string]string{"use_local": strconv.FormatBool(useLocal)}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&useLocal, "local", false, "Prefer the configured local model")
	return cmd
}
