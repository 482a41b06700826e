package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/app"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/transport/http/response"
)

type ChatHandler struct {
	queryService *app.QueryService
}

type AskRequest struct {
	PDFID         uint   `json:"pdf_id" binding:"required"`
	Question      string `json:"question" binding:"required"`
	EmbeddingType string `json:"embedding_type"`
	TopK          int    `json:"top_k"`
}

func NewChatHandler(queryService *app.QueryService) *ChatHandler {
	return &ChatHandler{queryService: queryService}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if req.EmbeddingType == "" {
		req.EmbeddingType = model.ProviderOllama
	}

	answer, err := h.queryService.Ask(c.Request.Context(), app.AskInput{
		PDFID:    req.PDFID,
		Provider: req.EmbeddingType,
		Question: req.Question,
		TopK:     req.TopK,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
		case errors.Is(err, app.ErrProviderMismatch):
			response.Error(c, http.StatusBadRequest, response.CodeProviderMismatch, err.Error())
		case errors.Is(err, app.ErrUnsupportedProvider), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoChunks):
			response.Error(c, http.StatusNotFound, response.CodeNoContent, "document has no indexed content")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer generation failed")
		}
		return
	}
	response.OK(c, answer)
}
