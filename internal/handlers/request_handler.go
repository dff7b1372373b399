package handlers

import (
	"context"
	"net/http"
	"strconv"

	"translation-market/internal/auth"
	"translation-market/internal/models"
	"translation-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// CreateBook registers a book for the calling requester
// POST /api/books
func (h *RequestHandler) CreateBook(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.requestService.CreateBook(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// ListBooks lists the calling user's books
// GET /api/books
func (h *RequestHandler) ListBooks(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	books, err := h.requestService.ListBooks(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// CreateRequest creates a translation request in DRAFT
// POST /api/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// PublishRequest opens a draft request for bidding
// POST /api/requests/:id/publish
func (h *RequestHandler) PublishRequest(c *gin.Context) {
	h.transition(c, h.requestService.PublishRequest)
}

// CancelRequest cancels a request
// POST /api/requests/:id/cancel
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	h.transition(c, h.requestService.CancelRequest)
}

func (h *RequestHandler) transition(c *gin.Context, op func(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Request, error)) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := op(c.Request.Context(), actor, requestID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// GetRequest retrieves a request with available actions
// GET /api/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, _ := auth.GetActor(c)

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, actions, err := h.requestService.GetRequest(c.Request.Context(), actor, requestID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": request, "available_actions": actions})
}

// GetRequestByReference resolves a shareable reference code
// GET /api/requests/ref/:code
func (h *RequestHandler) GetRequestByReference(c *gin.Context) {
	actor, _ := auth.GetActor(c)

	request, actions, err := h.requestService.GetRequestByReference(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": request, "available_actions": actions})
}

// ListOpenRequests lists requests open for bidding
// GET /api/requests/open
func (h *RequestHandler) ListOpenRequests(c *gin.Context) {
	limit, offset := pagination(c)

	requests, total, err := h.requestService.ListOpenRequests(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "total": total})
}

// ListMyRequests lists the calling requester's requests
// GET /api/requests
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, offset := pagination(c)

	requests, total, err := h.requestService.ListMyRequests(c.Request.Context(), actor, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "total": total})
}

// ListRequestEvents returns the request's durable event log
// GET /api/requests/:id/events
func (h *RequestHandler) ListRequestEvents(c *gin.Context) {
	actor, _ := auth.GetActor(c)

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	afterSeq := int64(0)
	if seqStr := c.Query("after_seq"); seqStr != "" {
		if s, err := strconv.ParseInt(seqStr, 10, 64); err == nil && s >= 0 {
			afterSeq = s
		}
	}
	limit, _ := pagination(c)

	eventsList, err := h.requestService.ListRequestEvents(c.Request.Context(), actor, requestID, afterSeq, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": eventsList, "total": len(eventsList)})
}

// pagination parses limit/offset query parameters with sane bounds
func pagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
