package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aiig/deliverables-backend/internal/http/response"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
	"github.com/aiig/deliverables-backend/internal/services"
)

type ProjectHandler struct {
	log          *logger.Logger
	projects     services.ProjectService
	deliverables services.DeliverableService
}

func NewProjectHandler(log *logger.Logger, projects services.ProjectService, deliverables services.DeliverableService) *ProjectHandler {
	return &ProjectHandler{
		log:          log.With("handler", "ProjectHandler"),
		projects:     projects,
		deliverables: deliverables,
	}
}

type createProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description"`
	ManagerID   *uuid.UUID `json:"manager_id"`
	ManagerName string     `json:"manager_name"`
}

type updateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ManagerID   *uuid.UUID `json:"manager_id"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	out, err := h.projects.List(reqCtx(c))
	if err != nil {
		h.log.Error("List projects failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_projects_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *ProjectHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query", errors.New("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	out, err := h.projects.Search(reqCtx(c), q, limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "search_projects_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	p, err := h.projects.Get(reqCtx(c), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "get_project_failed", err)
		return
	}
	if p == nil {
		response.RespondError(c, http.StatusNotFound, "project_not_found", errNotFound)
		return
	}
	response.RespondOK(c, p)
}

func (h *ProjectHandler) ListDeliverables(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	includeCompleted := c.Query("include_completed") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	out, err := h.deliverables.ListByProject(reqCtx(c), id, includeCompleted, limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_project_deliverables_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	p, err := h.projects.Create(reqCtx(c), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
		ManagerName: req.ManagerName,
	})
	if err != nil {
		if errors.Is(err, services.ErrManagerRequired) {
			response.RespondError(c, http.StatusBadRequest, "manager_required", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "create_project_failed", err)
		return
	}
	response.RespondCreated(c, p)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	p, err := h.projects.Update(reqCtx(c), id, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "update_project_failed", err)
		return
	}
	if p == nil {
		response.RespondError(c, http.StatusNotFound, "project_not_found", errNotFound)
		return
	}
	response.RespondOK(c, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	found, err := h.projects.Delete(reqCtx(c), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "delete_project_failed", err)
		return
	}
	if !found {
		response.RespondError(c, http.StatusNotFound, "project_not_found", errNotFound)
		return
	}
	response.RespondNoContent(c)
}
