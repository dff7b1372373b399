package handlers

import (
	"context"
	"net/http"

	"translation-market/internal/auth"
	"translation-market/internal/models"
	"translation-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MilestoneHandler struct {
	milestoneService *services.MilestoneService
}

func NewMilestoneHandler(milestoneService *services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

// Create adds a milestone to a signed contract
// POST /api/contracts/:id/milestones
func (h *MilestoneHandler) Create(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req models.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	milestone, err := h.milestoneService.Create(c.Request.Context(), actor, contractID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

// Assign binds a translator to a pending milestone
// POST /api/milestones/:id/assign
func (h *MilestoneHandler) Assign(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}

	var req models.AssignMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	milestone, err := h.milestoneService.Assign(c.Request.Context(), actor, milestoneID, req.TranslatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

// Start moves an assigned milestone into active work
// POST /api/milestones/:id/start
func (h *MilestoneHandler) Start(c *gin.Context) {
	h.transition(c, h.milestoneService.Start)
}

// Submit delivers the milestone's work for review
// POST /api/milestones/:id/submit
func (h *MilestoneHandler) Submit(c *gin.Context) {
	h.transition(c, h.milestoneService.Submit)
}

// Approve accepts submitted work
// POST /api/milestones/:id/approve
func (h *MilestoneHandler) Approve(c *gin.Context) {
	h.transition(c, h.milestoneService.Approve)
}

// MarkPaid records payment for an approved milestone
// POST /api/milestones/:id/pay
func (h *MilestoneHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.milestoneService.MarkPaid)
}

func (h *MilestoneHandler) transition(c *gin.Context, op func(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Milestone, error)) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}

	milestone, err := op(c.Request.Context(), actor, milestoneID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

// GetMilestone retrieves a milestone with available actions
// GET /api/milestones/:id
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}

	milestone, actions, err := h.milestoneService.GetMilestone(c.Request.Context(), actor, milestoneID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestone": milestone, "available_actions": actions})
}

// ListByContract lists a contract's milestones in ordinal order
// GET /api/contracts/:id/milestones
func (h *MilestoneHandler) ListByContract(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	milestones, err := h.milestoneService.ListByContract(c.Request.Context(), actor, contractID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones, "total": len(milestones)})
}
