package reminder

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/service/message"
	reminderService "github.com/shoplytic/reminder-api/internal/service/reminder"
	"github.com/shoplytic/reminder-api/pkg/errors"
	"github.com/shoplytic/reminder-api/pkg/httputil"
)

type Handler struct {
	service *reminderService.Service
	scanner *reminderService.Scanner
}

func NewHandler(service *reminderService.Service, scanner *reminderService.Scanner) *Handler {
	return &Handler{service: service, scanner: scanner}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reminders := r.Group("/reminders")
	{
		reminders.POST("", h.CreateReminder)
		reminders.GET("", h.ListReminders)
		reminders.GET("/:id", h.GetReminder)
		reminders.PUT("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
		reminders.GET("/tokens", h.ListAllowedTokens)
		reminders.POST("/scan", h.TriggerScan)
	}
	r.GET("/customers/:id/reminder-histories", h.ListCustomerHistories)
}

func (h *Handler) CreateReminder(c *gin.Context) {
	var req model.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	rem, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, rem)
}

func (h *Handler) GetReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid reminder ID", err))
		return
	}

	rem, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, rem)
}

func (h *Handler) ListReminders(c *gin.Context) {
	reminders, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, reminders)
}

func (h *Handler) UpdateReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid reminder ID", err))
		return
	}

	var req model.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	rem, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, rem)
}

func (h *Handler) DeleteReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid reminder ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, nil)
}

// ListAllowedTokens returns the message tokens templates may use, keyed by
// rule type.
func (h *Handler) ListAllowedTokens(c *gin.Context) {
	ruleType := model.ReminderRuleType(c.DefaultQuery("rule_type", string(model.RuleTypeAbandonedCart)))
	tokens := message.AllowedTokens(ruleType)
	if len(tokens) == 0 {
		httputil.RespondWithError(c, errors.BadRequest("unknown rule type", nil))
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{
		"rule_type": ruleType,
		"tokens":    tokens,
	})
}

// TriggerScan runs one scan pass inline. Intended for admin use; the
// worker runs the same pass on a schedule.
func (h *Handler) TriggerScan(c *gin.Context) {
	if err := h.scanner.Scan(c.Request.Context()); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"scan": "completed"})
}

func (h *Handler) ListCustomerHistories(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid customer ID", err))
		return
	}

	histories, err := h.service.Histories(c.Request.Context(), customerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, histories)
}
