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

type EscrowHandler struct {
	escrowService *services.EscrowService
}

func NewEscrowHandler(escrowService *services.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowService: escrowService}
}

// CreateStandalone opens an escrow not yet tied to a contract
// POST /api/escrows
func (h *EscrowHandler) CreateStandalone(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	escrow, err := h.escrowService.CreateStandalone(c.Request.Context(), actor, req.AmountCents)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, escrow)
}

// Fund marks an escrow as funded
// POST /api/escrows/:id/fund
func (h *EscrowHandler) Fund(c *gin.Context) {
	h.transition(c, h.escrowService.Fund)
}

// Release pays out a funded escrow
// POST /api/escrows/:id/release
func (h *EscrowHandler) Release(c *gin.Context) {
	h.transition(c, h.escrowService.Release)
}

func (h *EscrowHandler) transition(c *gin.Context, op func(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Escrow, error)) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	escrowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid escrow id"})
		return
	}

	escrow, err := op(c.Request.Context(), actor, escrowID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, escrow)
}

// GetEscrow retrieves an escrow with available actions
// GET /api/escrows/:id
func (h *EscrowHandler) GetEscrow(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	escrowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid escrow id"})
		return
	}

	escrow, actions, err := h.escrowService.GetEscrow(c.Request.Context(), actor, escrowID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escrow": escrow, "available_actions": actions})
}

// GetByContract retrieves the escrow backing a contract
// GET /api/contracts/:id/escrow
func (h *EscrowHandler) GetByContract(c *gin.Context) {
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

	escrow, actions, err := h.escrowService.GetEscrowByContract(c.Request.Context(), actor, contractID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escrow": escrow, "available_actions": actions})
}
