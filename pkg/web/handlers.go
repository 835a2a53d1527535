package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/vendura/automation/pkg/models"
	"github.com/vendura/automation/pkg/schema"
	"github.com/vendura/automation/pkg/services"
)

const defaultExecutionsLimit = 50

// APIHandlers holds the HTTP handlers for the workflow API.
type APIHandlers struct {
	workflowService *services.Workflow
	validate        *validator.Validate
}

// NewAPIHandlers creates the handler set.
func NewAPIHandlers(workflowService *services.Workflow, validate *validator.Validate) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		validate:        validate,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), req.Workflow())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), c.Params("id"), req.Workflow())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflowService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetWorkflowStatus(c fiber.Ctx) error {
	var req SetStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.SetStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// ValidateWorkflow runs the graph validation without saving anything; the
// builder UI calls this on every edit.
func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	result, err := h.workflowService.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// RunWorkflow starts an on-demand execution. mode=live performs real side
// effects and requires an active workflow; mode=simulate is a dry run.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	var req RunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	execution, err := h.workflowService.Run(c.Context(), c.Params("id"), req.Mode, req.Payload)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.workflowService.Execution(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	if err := h.workflowService.CancelExecution(c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	limit := defaultExecutionsLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return badRequest(c, "limit must be a positive integer")
		}

		limit = parsed
	}

	executions, err := h.workflowService.Executions(c.Context(), c.Params("id"), limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": executions,
		"count":      len(executions),
	})
}

func (h *APIHandlers) GetWorkflowStats(c fiber.Ctx) error {
	stats, err := h.workflowService.Stats(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

// GetTriggerCatalog lists the trigger types the builder UI can offer.
func (h *APIHandlers) GetTriggerCatalog(c fiber.Ctx) error {
	return c.JSON(models.TriggerCatalog)
}

// GetActionCatalog lists the action types the builder UI can offer.
func (h *APIHandlers) GetActionCatalog(c fiber.Ctx) error {
	return c.JSON(models.ActionCatalog)
}

// GetOperatorCatalog lists the comparison operators condition nodes accept.
func (h *APIHandlers) GetOperatorCatalog(c fiber.Ctx) error {
	return c.JSON(models.ValidConditionOperators)
}

// ValidateTriggerConfig checks a single trigger configuration against its
// JSON Schema so the builder can flag a node without submitting the
// whole workflow.
func (h *APIHandlers) ValidateTriggerConfig(c fiber.Ctx) error {
	var config map[string]any
	if err := c.Bind().JSON(&config); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	errs := schema.ValidateTriggerConfig(models.TriggerType(c.Params("type")), config)

	return c.JSON(fiber.Map{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// ValidateActionConfig checks a single action configuration against its
// JSON Schema.
func (h *APIHandlers) ValidateActionConfig(c fiber.Ctx) error {
	var config map[string]any
	if err := c.Bind().JSON(&config); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	errs := schema.ValidateActionConfig(models.ActionType(c.Params("type")), config)

	return c.JSON(fiber.Map{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	check, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": check,
		},
		"timestamp": time.Now().UTC(),
	})
}
