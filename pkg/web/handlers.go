package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/crewline/automation/pkg/models"
	"github.com/crewline/automation/pkg/persistence"
	"github.com/crewline/automation/pkg/registry"
	"github.com/crewline/automation/pkg/workflow"
)

type APIHandlers struct {
	service   *workflow.Service
	registry  *registry.Registry
	validator *validator.Validate
}

func NewAPIHandlers(service *workflow.Service, reg *registry.Registry) *APIHandlers {
	return &APIHandlers{
		service:   service,
		registry:  reg,
		validator: validator.New(),
	}
}

// NewRouter builds the fiber app with every engine route registered.
func NewRouter(handlers *APIHandlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "crewline-automation",
	})

	app.Get("/health", handlers.HealthCheck)

	v1 := app.Group("/v1")
	v1.Post("/events", handlers.IngestEvent)

	v1.Get("/workflows", handlers.ListDefinitions)
	v1.Post("/workflows", handlers.CreateDefinition)
	v1.Get("/workflows/:id", handlers.GetDefinition)
	v1.Put("/workflows/:id", handlers.UpdateDefinition)
	v1.Delete("/workflows/:id", handlers.DeleteDefinition)
	v1.Get("/workflows/:id/executions", handlers.ListExecutions)

	v1.Get("/executions/:id", handlers.GetExecution)
	v1.Get("/action-types", handlers.ListActionTypes)

	return app
}

// IngestEvent accepts a trigger event and enqueues it. The response is 202:
// matching and execution happen asynchronously and their outcome never reaches
// this caller.
func (h *APIHandlers) IngestEvent(c fiber.Ctx) error {
	var req TriggerEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	switch req.Type {
	case models.TriggerRecordUpdated:
		h.service.TriggerRecordUpdated(c.Context(), req.Module, req.RecordID, req.Data, req.PreviousData)
	case models.TriggerFormSubmitted:
		h.service.TriggerFormSubmitted(c.Context(), req.Module, req.RecordID, req.Data)
	case models.TriggerFieldChanged:
		field, _ := req.Data["changed_field"].(string)
		h.service.TriggerFieldChanged(c.Context(), req.Module, req.RecordID, field,
			req.Data["old_value"], req.Data["new_value"], req.Data)
	default:
		h.service.TriggerRecordCreated(c.Context(), req.Module, req.RecordID, req.Data)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *APIHandlers) ListDefinitions(c fiber.Ctx) error {
	defs, err := h.service.ListDefinitions(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": defs})
}

func (h *APIHandlers) GetDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.service.GetDefinition(c.Context(), id)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateDefinition(c fiber.Ctx) error {
	var req CreateDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def := &models.WorkflowDefinition{
		Name:              req.Name,
		IsActive:          req.IsActive,
		TriggerType:       req.TriggerType,
		TriggerModule:     req.TriggerModule,
		TriggerConfig:     req.TriggerConfig,
		TriggerConditions: req.TriggerConditions,
		Actions:           req.Actions,
	}

	created, err := h.service.CreateDefinition(c.Context(), def)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def := &models.WorkflowDefinition{
		ID:                id,
		Name:              req.Name,
		IsActive:          req.IsActive,
		TriggerType:       req.TriggerType,
		TriggerModule:     req.TriggerModule,
		TriggerConfig:     req.TriggerConfig,
		TriggerConditions: req.TriggerConditions,
		Actions:           req.Actions,
	}

	updated, err := h.service.UpdateDefinition(c.Context(), def)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return badRequest(c, err.Error())
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.service.DeleteDefinition(c.Context(), id)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	executions, err := h.service.ListExecutionsByWorkflow(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.service.GetExecution(c.Context(), id)
	if err != nil {
		if persistence.IsExecutionNotFound(err) {
			return notFound(c, "Execution not found")
		}

		return internalError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) ListActionTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"action_types": h.registry.ActionTypes()})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.service.HealthCheck(c.Context())

	status := "healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}
