package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clientdesk/internal/model"
)

// ProjectAPI is the slice of the project service the handler uses.
type ProjectAPI interface {
	Create(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Update(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error)
	UpdateStage(ctx context.Context, id string, patch model.StagePatch) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}

type ProjectHandler struct {
	svc    ProjectAPI
	logger *zap.Logger
}

func NewProjectHandler(svc ProjectAPI, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: logger}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("ListProjects: failed to fetch projects", zap.Error(err))
		writeError(c, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var in model.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("CreateProject: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.logger.Error("CreateProject: failed",
			zap.String("client_name", in.ClientName),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}

	h.logger.Info("CreateProject: success",
		zap.String("id", p.ID),
		zap.String("client_name", p.ClientName),
	)
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id := c.Param("id")
	var upd model.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("UpdateProject: invalid body", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, upd)
	if err != nil {
		h.logger.Error("UpdateProject: failed", zap.String("id", id), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

// PatchStage applies a partial update to one stage and responds with
// the entire updated project, never a field-level patch.
func (h *ProjectHandler) PatchStage(c *gin.Context) {
	id := c.Param("id")
	var patch model.StagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("PatchStage: invalid body", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.UpdateStage(c.Request.Context(), id, patch)
	if err != nil {
		h.logger.Error("PatchStage: failed",
			zap.String("id", id),
			zap.Int("stage_id", patch.StageID),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}

	h.logger.Info("PatchStage: success",
		zap.String("id", id),
		zap.Int("stage_id", patch.StageID),
	)
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("DeleteProject: success", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
