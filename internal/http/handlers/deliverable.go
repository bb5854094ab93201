package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/http/response"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
	"github.com/aiig/deliverables-backend/internal/services"
)

type DeliverableHandler struct {
	log          *logger.Logger
	deliverables services.DeliverableService
}

func NewDeliverableHandler(log *logger.Logger, deliverables services.DeliverableService) *DeliverableHandler {
	return &DeliverableHandler{
		log:          log.With("handler", "DeliverableHandler"),
		deliverables: deliverables,
	}
}

type createDeliverableRequest struct {
	ProjectID   *uuid.UUID `json:"project_id"`
	ProjectName string     `json:"project_name"`
	ManagerName string     `json:"manager_name"`
	Description string     `json:"description" binding:"required"`
	DueDate     string     `json:"due_date" binding:"required"`
	Frequency   string     `json:"frequency"`
	Notes       *string    `json:"notes"`
}

type updateDeliverableRequest struct {
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Frequency   *string `json:"frequency"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

type filterDeliverablesRequest struct {
	ProjectID        *uuid.UUID `json:"project_id"`
	ProjectName      string     `json:"project_name"`
	ManagerID        *uuid.UUID `json:"manager_id"`
	Status           *string    `json:"status"`
	Frequency        *string    `json:"frequency"`
	DueBefore        *string    `json:"due_before"`
	DueAfter         *string    `json:"due_after"`
	IncludeCompleted bool       `json:"include_completed"`
	Search           string     `json:"search"`
}

func parseDateParam(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func uuidQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *DeliverableHandler) List(c *gin.Context) {
	includeCompleted := c.Query("include_completed") == "true"
	out, err := h.deliverables.List(reqCtx(c), includeCompleted)
	if err != nil {
		h.log.Error("List deliverables failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_deliverables_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *DeliverableHandler) Upcoming(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	projectID, err := uuidQuery(c, "project_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	managerID, err := uuidQuery(c, "manager_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", err)
		return
	}

	out, err := h.deliverables.Upcoming(reqCtx(c), services.UpcomingQuery{
		Days:           days,
		ProjectID:      projectID,
		ManagerID:      managerID,
		IncludeOverdue: c.Query("include_overdue") == "true",
	})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_upcoming_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *DeliverableHandler) Overdue(c *gin.Context) {
	projectID, err := uuidQuery(c, "project_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	managerID, err := uuidQuery(c, "manager_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", err)
		return
	}
	out, err := h.deliverables.Overdue(reqCtx(c), projectID, managerID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_overdue_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *DeliverableHandler) Summary(c *gin.Context) {
	projectID, err := uuidQuery(c, "project_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	managerID, err := uuidQuery(c, "manager_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", err)
		return
	}
	out, err := h.deliverables.Summary(reqCtx(c), projectID, managerID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "summary_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *DeliverableHandler) Filter(c *gin.Context) {
	var req filterDeliverablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	f := domain.DeliverableFilter{
		ProjectID:        req.ProjectID,
		ProjectName:      req.ProjectName,
		ManagerID:        req.ManagerID,
		IncludeCompleted: req.IncludeCompleted,
		Search:           req.Search,
	}
	if req.Status != nil {
		status := domain.DeliverableStatus(*req.Status)
		if !status.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_status", errors.New("invalid status: "+*req.Status))
			return
		}
		f.Status = &status
	}
	if req.Frequency != nil {
		freq := domain.Frequency(*req.Frequency)
		if !freq.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_frequency", errors.New("invalid frequency: "+*req.Frequency))
			return
		}
		f.Frequency = &freq
	}
	if req.DueBefore != nil {
		t, err := parseDateParam(*req.DueBefore)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_due_before", err)
			return
		}
		f.DueBefore = &t
	}
	if req.DueAfter != nil {
		t, err := parseDateParam(*req.DueAfter)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_due_after", err)
			return
		}
		f.DueAfter = &t
	}

	out, err := h.deliverables.Filter(reqCtx(c), f)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "filter_deliverables_failed", err)
		return
	}
	response.RespondOK(c, out)
}

func (h *DeliverableHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_deliverable_id", err)
		return
	}
	d, err := h.deliverables.Get(reqCtx(c), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "get_deliverable_failed", err)
		return
	}
	if d == nil {
		response.RespondError(c, http.StatusNotFound, "deliverable_not_found", errNotFound)
		return
	}
	response.RespondOK(c, d)
}

func (h *DeliverableHandler) Create(c *gin.Context) {
	var req createDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	dueDate, err := parseDateParam(req.DueDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_due_date", err)
		return
	}
	frequency := domain.FrequencyOneTime
	if req.Frequency != "" {
		frequency = domain.Frequency(req.Frequency)
		if !frequency.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_frequency", errors.New("invalid frequency: "+req.Frequency))
			return
		}
	}

	d, err := h.deliverables.Create(reqCtx(c), services.CreateDeliverableInput{
		ProjectID:   req.ProjectID,
		ProjectName: req.ProjectName,
		ManagerName: req.ManagerName,
		Description: req.Description,
		DueDate:     dueDate,
		Frequency:   frequency,
		Notes:       req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateDeliverable):
			response.RespondError(c, http.StatusConflict, "duplicate_deliverable", err)
		case errors.Is(err, services.ErrProjectRequired):
			response.RespondError(c, http.StatusBadRequest, "project_required", err)
		default:
			response.RespondError(c, http.StatusInternalServerError, "create_deliverable_failed", err)
		}
		return
	}
	response.RespondCreated(c, d)
}

func (h *DeliverableHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_deliverable_id", err)
		return
	}
	var req updateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	in := services.UpdateDeliverableInput{
		Description: req.Description,
		Notes:       req.Notes,
	}
	if req.DueDate != nil {
		t, err := parseDateParam(*req.DueDate)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_due_date", err)
			return
		}
		in.DueDate = &t
	}
	if req.Frequency != nil {
		freq := domain.Frequency(*req.Frequency)
		if !freq.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_frequency", errors.New("invalid frequency: "+*req.Frequency))
			return
		}
		in.Frequency = &freq
	}
	if req.Status != nil {
		status := domain.DeliverableStatus(*req.Status)
		if !status.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_status", errors.New("invalid status: "+*req.Status))
			return
		}
		in.Status = &status
	}

	d, err := h.deliverables.Update(reqCtx(c), id, in)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "update_deliverable_failed", err)
		return
	}
	if d == nil {
		response.RespondError(c, http.StatusNotFound, "deliverable_not_found", errNotFound)
		return
	}
	response.RespondOK(c, d)
}

func (h *DeliverableHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_deliverable_id", err)
		return
	}
	d, err := h.deliverables.MarkComplete(reqCtx(c), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "complete_deliverable_failed", err)
		return
	}
	if d == nil {
		response.RespondError(c, http.StatusNotFound, "deliverable_not_found", errNotFound)
		return
	}
	response.RespondOK(c, d)
}

func (h *DeliverableHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_deliverable_id", err)
		return
	}
	found, err := h.deliverables.Delete(reqCtx(c), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "delete_deliverable_failed", err)
		return
	}
	if !found {
		response.RespondError(c, http.StatusNotFound, "deliverable_not_found", errNotFound)
		return
	}
	response.RespondNoContent(c)
}
