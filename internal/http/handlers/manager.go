package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aiig/deliverables-backend/internal/http/response"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
	"github.com/aiig/deliverables-backend/internal/services"
)

var errNotFound = errors.New("not found")

type ManagerHandler struct {
	log      *logger.Logger
	managers services.ManagerService
}

func NewManagerHandler(log *logger.Logger, managers services.ManagerService) *ManagerHandler {
	return &ManagerHandler{
		log:      log.With("handler", "ManagerHandler"),
		managers: managers,
	}
}

type createManagerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
}

type updateManagerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (h *ManagerHandler) List(c *gin.Context) {
	out, err := h.managers.List(reqCtx(c))
	if err != nil {
		h.log.Error("List managers failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_managers_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *ManagerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", err)
		return
	}
	m, err := h.managers.Get(reqCtx(c), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "get_manager_failed", err)
		return
	}
	if m == nil {
		response.RespondError(c, http.StatusNotFound, "manager_not_found", errNotFound)
		return
	}
	response.RespondOK(c, m)
}

func (h *ManagerHandler) Create(c *gin.Context) {
	var req createManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	m, err := h.managers.Create(reqCtx(c), services.CreateManagerInput{Name: req.Name, Email: req.Email})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "create_manager_failed", err)
		return
	}
	response.RespondCreated(c, m)
}

func (h *ManagerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", err)
		return
	}
	var req updateManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	m, err := h.managers.Update(reqCtx(c), id, services.UpdateManagerInput{Name: req.Name, Email: req.Email})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "update_manager_failed", err)
		return
	}
	if m == nil {
		response.RespondError(c, http.StatusNotFound, "manager_not_found", errNotFound)
		return
	}
	response.RespondOK(c, m)
}

func (h *ManagerHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", err)
		return
	}
	found, err := h.managers.Delete(reqCtx(c), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "delete_manager_failed", err)
		return
	}
	if !found {
		response.RespondError(c, http.StatusNotFound, "manager_not_found", errNotFound)
		return
	}
	response.RespondNoContent(c)
}
