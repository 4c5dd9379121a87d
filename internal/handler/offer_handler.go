package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clientdesk/internal/model"
)

// OfferAPI is the slice of the offer service the handler uses.
type OfferAPI interface {
	CreateOffer(ctx context.Context, in model.OfferInput) (*model.Offer, error)
	ListOffers(ctx context.Context) ([]model.Offer, error)
	UpdateOffer(ctx context.Context, id string, in model.OfferInput) (*model.Offer, error)
	DeleteOffer(ctx context.Context, id string) error
	Assign(ctx context.Context, offerID, clientID, clientName, notes string) (*model.AssignedOffer, error)
	ListAssignments(ctx context.Context, clientID string) ([]model.AssignedOffer, error)
	Claim(ctx context.Context, assignmentID string) (*model.AssignedOffer, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus, notes string) (*model.AssignedOffer, error)
}

type OfferHandler struct {
	svc    OfferAPI
	logger *zap.Logger
}

func NewOfferHandler(svc OfferAPI, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{svc: svc, logger: logger}
}

func (h *OfferHandler) ListOffers(c *gin.Context) {
	offers, err := h.svc.ListOffers(c.Request.Context())
	if err != nil {
		h.logger.Error("ListOffers: failed", zap.Error(err))
		writeError(c, err)
		return
	}
	if offers == nil {
		offers = []model.Offer{}
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var in model.OfferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("CreateOffer: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	o, err := h.svc.CreateOffer(c.Request.Context(), in)
	if err != nil {
		h.logger.Error("CreateOffer: failed", zap.String("title", in.Title), zap.Error(err))
		writeError(c, err)
		return
	}

	h.logger.Info("CreateOffer: success", zap.String("id", o.ID))
	c.JSON(http.StatusCreated, gin.H{"offer": o})
}

func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	id := c.Param("id")
	var in model.OfferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("UpdateOffer: invalid body", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	o, err := h.svc.UpdateOffer(c.Request.Context(), id, in)
	if err != nil {
		h.logger.Error("UpdateOffer: failed", zap.String("id", id), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offer": o})
}

func (h *OfferHandler) DeleteOffer(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteOffer(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("DeleteOffer: success", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type assignRequest struct {
	OfferID    string `json:"offerId"`
	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
	Notes      string `json:"notes"`
}

func (h *OfferHandler) AssignOffer(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("AssignOffer: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	a, err := h.svc.Assign(c.Request.Context(), req.OfferID, req.ClientID, req.ClientName, req.Notes)
	if err != nil {
		h.logger.Error("AssignOffer: failed",
			zap.String("offer_id", req.OfferID),
			zap.String("client_id", req.ClientID),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}

	h.logger.Info("AssignOffer: success",
		zap.String("assignment_id", a.ID),
		zap.String("client_id", a.ClientID),
	)
	c.JSON(http.StatusCreated, gin.H{"assignedOffer": a})
}

func (h *OfferHandler) ListAssignedOffers(c *gin.Context) {
	assignments, err := h.svc.ListAssignments(c.Request.Context(), c.Query("clientId"))
	if err != nil {
		h.logger.Error("ListAssignedOffers: failed", zap.Error(err))
		writeError(c, err)
		return
	}
	if assignments == nil {
		assignments = []model.AssignedOffer{}
	}
	c.JSON(http.StatusOK, gin.H{"assignedOffers": assignments})
}

func (h *OfferHandler) ClaimOffer(c *gin.Context) {
	id := c.Param("id")
	a, err := h.svc.Claim(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("ClaimOffer: rejected", zap.String("id", id), zap.Error(err))
		writeError(c, err)
		return
	}

	h.logger.Info("ClaimOffer: success", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"assignedOffer": a})
}

type statusRequest struct {
	Status model.AssignmentStatus `json:"status"`
	Notes  string                 `json:"notes"`
}

func (h *OfferHandler) UpdateOfferStatus(c *gin.Context) {
	id := c.Param("id")
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateOfferStatus: invalid body", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	a, err := h.svc.UpdateAssignmentStatus(c.Request.Context(), id, req.Status, req.Notes)
	if err != nil {
		h.logger.Warn("UpdateOfferStatus: rejected",
			zap.String("id", id),
			zap.String("status", string(req.Status)),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignedOffer": a})
}
