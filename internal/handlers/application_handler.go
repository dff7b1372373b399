package handlers

import (
	"net/http"

	"translation-market/internal/auth"
	"translation-market/internal/models"
	"translation-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// Apply submits a translator's bid on an open request
// POST /api/requests/:id/applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
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

	var req models.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := h.applicationService.Apply(c.Request.Context(), actor, requestID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}

// Withdraw retracts a submitted application
// POST /api/applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	application, err := h.applicationService.Withdraw(c.Request.Context(), actor, appID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, application)
}

// Accept accepts an application and opens a draft contract
// POST /api/applications/:id/accept
func (h *ApplicationHandler) Accept(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	application, contract, err := h.applicationService.Accept(c.Request.Context(), actor, appID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": application, "contract": contract})
}

// Reject declines an application
// POST /api/applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	application, err := h.applicationService.Reject(c.Request.Context(), actor, appID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, application)
}

// GetApplication retrieves a single application with available actions
// GET /api/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	application, actions, err := h.applicationService.GetApplication(c.Request.Context(), actor, appID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": application, "available_actions": actions})
}

// ListByRequest lists applications on a request, filtered by visibility
// GET /api/requests/:id/applications
func (h *ApplicationHandler) ListByRequest(c *gin.Context) {
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

	applications, err := h.applicationService.ListByRequest(c.Request.Context(), actor, requestID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications, "total": len(applications)})
}

// ListMine lists the calling translator's applications
// GET /api/applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	applications, err := h.applicationService.ListMine(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications, "total": len(applications)})
}
