package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aiig/deliverables-backend/internal/http/response"
	"github.com/aiig/deliverables-backend/internal/ingestion"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

type UploadHandler struct {
	log            *logger.Logger
	importer       *ingestion.Importer
	maxUploadBytes int64
}

func NewUploadHandler(log *logger.Logger, importer *ingestion.Importer, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		log:            log.With("handler", "UploadHandler"),
		importer:       importer,
		maxUploadBytes: maxUploadBytes,
	}
}

// parseSkipInvalid accepts the usual boolean spellings ("false", "False",
// "0", ...); anything else, including absence, means skip mode.
func parseSkipInvalid(raw string) bool {
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return true
	}
	return v
}

func (h *UploadHandler) validateUpload(c *gin.Context) (*multipart.FileHeader, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", errors.New("form field 'file' is required"))
		return nil, false
	}
	if fh.Filename == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_filename", errors.New("no filename provided"))
		return nil, false
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		response.RespondError(c, http.StatusBadRequest, "file_type_not_allowed",
			fmt.Errorf("file type '%s' not allowed. Allowed types: .xlsx, .xls, .csv", ext))
		return nil, false
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Errorf("file exceeds maximum upload size of %d bytes", h.maxUploadBytes))
		return nil, false
	}
	return fh, true
}

func (h *UploadHandler) Preview(c *gin.Context) {
	fh, ok := h.validateUpload(c)
	if !ok {
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "read_upload_failed", err)
		return
	}
	defer f.Close()

	result := h.importer.Preview(f, fh.Filename)
	response.RespondOK(c, result)
}

func (h *UploadHandler) Import(c *gin.Context) {
	fh, ok := h.validateUpload(c)
	if !ok {
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "read_upload_failed", err)
		return
	}
	defer f.Close()

	skipInvalid := parseSkipInvalid(c.Query("skip_invalid"))

	result := h.importer.Import(reqCtx(c), f, fh.Filename, skipInvalid)
	h.log.Info("Import finished",
		"filename", fh.Filename,
		"success", result.Success,
		"imported", result.ImportedRows,
		"skipped", result.SkippedRows,
	)

	if !result.Success && !skipInvalid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"message": "Import failed due to validation errors",
				"code":    "import_failed",
			},
			"result": result,
		})
		return
	}
	response.RespondOK(c, result)
}

func (h *UploadHandler) Runs(c *gin.Context) {
	runs, err := h.importer.ListRuns(reqCtx(c), 50)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_import_runs_failed", err)
		return
	}
	response.RespondOK(c, runs)
}

// Template documents the expected upload format, including the
// deduplication rule.
func (h *UploadHandler) Template(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"columns": gin.H{
			"Project": gin.H{
				"description": "Name of the infrastructure project",
				"type":        "string",
				"required":    true,
				"example":     "New Toronto Hospital",
			},
			"Deliverable": gin.H{
				"description": "Description of the deliverable",
				"type":        "string",
				"required":    true,
				"example":     "Submit monthly progress report",
			},
			"Due Date": gin.H{
				"description": "Due date for the deliverable",
				"type":        "date",
				"required":    true,
				"format":      "YYYY-MM-DD or spreadsheet date",
				"example":     "2026-02-28",
			},
			"Frequency": gin.H{
				"description": "How often this deliverable recurs",
				"type":        "string",
				"required":    false,
				"valid_values": gin.H{
					"M":  "Monthly",
					"Q":  "Quarterly",
					"SA": "Semi-Annual",
					"A":  "Annual",
					"OT": "One-Time",
				},
				"default": "OT",
				"example": "M",
			},
			"Project Manager": gin.H{
				"description": "Name of the project manager",
				"type":        "string",
				"required":    true,
				"example":     "Jane Doe",
			},
		},
		"notes": []string{
			"Several header spellings are accepted per column (e.g. 'PM' for Project Manager)",
			"Duplicates are determined by (project, due_date, frequency, description) and skipped",
			"Managers and projects referenced by name are created automatically",
		},
	})
}
