package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studypulse-backend/internal/http/response"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/services"
)

var errEmptyBody = errors.New("request body is empty")

// multipartOverhead is the room left above the import limit for part
// headers and boundaries.
const multipartOverhead = 64 << 10

type ImportHandler struct {
	log     *logger.Logger
	imports services.ImportService
}

func NewImportHandler(log *logger.Logger, imports services.ImportService) *ImportHandler {
	return &ImportHandler{log: log.With("handler", "ImportHandler"), imports: imports}
}

// readText returns the import text from either a JSON body {"text": "..."}
// or the raw body.
func readText(c *gin.Context) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImportBytes)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBodyError(c, "invalid_request", err)
			return "", false
		}
		return req.Text, true
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBodyError(c, "invalid_request", err)
		return "", false
	}
	return string(raw), true
}

// respondBodyError answers 413 when err comes from the body limit and 400
// with code otherwise.
func respondBodyError(c *gin.Context, code string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "import_too_large", err)
		return
	}
	response.RespondError(c, http.StatusBadRequest, code, err)
}

// POST /imports/ics
func (h *ImportHandler) ImportICS(c *gin.Context) {
	text, ok := readText(c)
	if !ok {
		return
	}
	res, err := h.imports.ImportICS(c.Request.Context(), text)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /imports/csv
func (h *ImportHandler) ImportCSV(c *gin.Context) {
	text, ok := readText(c)
	if !ok {
		return
	}
	res, err := h.imports.ImportCSV(c.Request.Context(), text)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /imports/pdf
// multipart: file=<pdf>, or a text body with the extracted text.
func (h *ImportHandler) ImportPDF(c *gin.Context) {
	var (
		document []byte
		text     string
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImportBytes+multipartOverhead)
		fh, err := c.FormFile("file")
		if err != nil {
			respondBodyError(c, "missing_file", err)
			return
		}
		if fh.Size > services.MaxImportBytes {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "import_too_large",
				fmt.Errorf("file is %d bytes, limit %d", fh.Size, services.MaxImportBytes))
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
			return
		}
		defer f.Close()
		if document, err = io.ReadAll(f); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
			return
		}
		if len(document) == 0 {
			response.RespondError(c, http.StatusBadRequest, "missing_file", errEmptyBody)
			return
		}
	} else {
		var ok bool
		if text, ok = readText(c); !ok {
			return
		}
	}

	res, err := h.imports.ImportPDF(c.Request.Context(), document, text)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
