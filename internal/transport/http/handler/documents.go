package handler

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/app"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/transport/http/response"
)

type DocumentHandler struct {
	ingestService *app.IngestService
	maxUploadMB   int
}

func NewDocumentHandler(ingestService *app.IngestService, maxUploadMB int) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &DocumentHandler{
		ingestService: ingestService,
		maxUploadMB:   maxUploadMB,
	}
}

// Upload accepts a multipart PDF plus an embedding_type form field and runs
// the ingestion pipeline synchronously; only span location happens in the
// background.
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	if fileHeader.Size > int64(h.maxUploadMB)<<20 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only pdf files are accepted")
		return
	}

	provider := c.DefaultPostForm("embedding_type", model.ProviderOllama)

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	result, err := h.ingestService.Ingest(c.Request.Context(), app.IngestInput{
		Filename: filepath.Base(fileHeader.Filename),
		Provider: provider,
		File:     file,
	})
	if err != nil {
		// The failure stage stays visible: "no content" and "no reachable
		// backend" get distinct codes, and the wrapped cause is logged.
		switch {
		case errors.Is(err, app.ErrUnsupportedProvider):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoExtractableText):
			response.Error(c, http.StatusBadRequest, response.CodeNoContent, "pdf contains no extractable text")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request")
		case errors.Is(err, app.ErrExtractionFailed):
			log.Printf("upload ingest failed: %v", err)
			response.Error(c, http.StatusInternalServerError, response.CodeExtractionFailed, "pdf extraction failed")
		case errors.Is(err, app.ErrEmbeddingFailed):
			log.Printf("upload ingest failed: %v", err)
			response.Error(c, http.StatusInternalServerError, response.CodeEmbeddingFailed, "embedding or chunk storage failed")
		default:
			log.Printf("upload ingest failed: %v", err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.ingestService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	if err := h.ingestService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted": id})
}

// Reprocess re-enqueues span location so chunks that could not be located
// before get another pass.
func (h *DocumentHandler) Reprocess(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	if err := h.ingestService.Reprocess(c.Request.Context(), id); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reprocess failed")
		}
		return
	}
	response.OK(c, gin.H{"enqueued": id})
}

func documentID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return 0, false
	}
	return uint(id), true
}
