// Package web provides HTTP handlers and REST API endpoints for editing
// sessions, validation, rules and export.
package web

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
	"github.com/tidygrid/tidygrid/pkg/services"
)

type APIHandlers struct {
	sessionService     *services.Session
	rulesService       *services.Rules
	validationService  *services.Validation
	correctionsService *services.Corrections
	exportService      *services.Export
	suggestService     *services.Suggest
	validator          *validator.Validate
}

func NewAPIHandlers(
	sessionService *services.Session,
	rulesService *services.Rules,
	validationService *services.Validation,
	correctionsService *services.Corrections,
	exportService *services.Export,
	suggestService *services.Suggest,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		sessionService:     sessionService,
		rulesService:       rulesService,
		validationService:  validationService,
		correctionsService: correctionsService,
		exportService:      exportService,
		suggestService:     suggestService,
		validator:          validator,
	}
}

// RegisterRoutes wires every session endpoint into the app.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	sessions := app.Group("/sessions")
	sessions.Post("/", h.CreateSession)
	sessions.Get("/", h.ListSessions)
	sessions.Get("/:id", h.GetSession)
	sessions.Delete("/:id", h.DeleteSession)
	sessions.Put("/:id/tables", h.ReplaceTables)
	sessions.Patch("/:id/cells", h.EditCell)
	sessions.Get("/:id/validation", h.RunValidation)
	sessions.Get("/:id/rules", h.ListRules)
	sessions.Post("/:id/rules", h.AddRule)
	sessions.Delete("/:id/rules/:ruleId", h.RemoveRule)
	sessions.Post("/:id/rules/suggest", h.SuggestRule)
	sessions.Post("/:id/corrections/suggest", h.SuggestCorrections)
	sessions.Post("/:id/corrections/apply", h.ApplyCorrections)
	sessions.Post("/:id/export", h.ExportSession)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.sessionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "TidyGrid API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "TidyGrid API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// CreateSession ingests a multipart upload with clients, workers and tasks
// CSV files. Any subset of the three may be present.
func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	clients, workers, tasks, closeAll, err := h.tableReaders(c)
	if err != nil {
		return badRequest(c, "Invalid multipart upload: "+err.Error())
	}
	defer closeAll()

	dataset, err := h.sessionService.Upload(c.Context(), clients, workers, tasks)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dataset)
}

func (h *APIHandlers) ListSessions(c fiber.Ctx) error {
	datasets, err := h.sessionService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	summaries := make([]SessionSummary, 0, len(datasets))
	for _, dataset := range datasets {
		summaries = append(summaries, SessionSummary{
			ID:          dataset.ID,
			ClientCount: len(dataset.Clients),
			WorkerCount: len(dataset.Workers),
			TaskCount:   len(dataset.Tasks),
			RuleCount:   len(dataset.Rules),
			CreatedAt:   dataset.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:   dataset.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"sessions":    summaries,
		"total_count": len(summaries),
	})
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	dataset, err := h.sessionService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsDataSetNotFound(err) {
			return notFound(c, "Session not found")
		}

		return internalError(c, err)
	}

	return c.JSON(dataset)
}

func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	if err := h.sessionService.Delete(c.Context(), id); err != nil {
		if persistence.IsDataSetNotFound(err) {
			return notFound(c, "Session not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReplaceTables re-ingests the uploaded tables into an existing session,
// keeping its rules.
func (h *APIHandlers) ReplaceTables(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	clients, workers, tasks, closeAll, err := h.tableReaders(c)
	if err != nil {
		return badRequest(c, "Invalid multipart upload: "+err.Error())
	}
	defer closeAll()

	dataset, err := h.sessionService.ReplaceTables(c.Context(), id, clients, workers, tasks)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(dataset)
}

func (h *APIHandlers) EditCell(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var req EditCellRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	dataset, err := h.sessionService.EditCell(c.Context(), id,
		models.EntityType(req.EntityType), req.RowID, req.Field, req.Value)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(dataset)
}

// RunValidation executes a full validation pass and returns every issue.
func (h *APIHandlers) RunValidation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	result, err := h.validationService.Run(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) ListRules(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	ruleList, err := h.rulesService.List(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if ruleList == nil {
		ruleList = []models.Rule{}
	}

	return c.JSON(fiber.Map{"rules": ruleList})
}

// AddRule accepts a raw rule document, normalizes it and attaches it to the
// session. Alternate key spellings are tolerated; unknown types are not.
func (h *APIHandlers) AddRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var raw map[string]any
	if err := c.Bind().JSON(&raw); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	rule, err := h.rulesService.Add(c.Context(), id, raw)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) RemoveRule(c fiber.Ctx) error {
	id := c.Params("id")
	ruleID := c.Params("ruleId")

	if id == "" || ruleID == "" {
		return badRequest(c, "Session ID and rule ID are required")
	}

	if err := h.rulesService.Remove(c.Context(), id, ruleID); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SuggestRule converts a natural language description into a validated rule.
// The rule is returned for review, not attached.
func (h *APIHandlers) SuggestRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var req SuggestRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.suggestService.Rule(c.Context(), id, req.Description)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

// SuggestCorrections asks the AI collaborator for fix proposals against the
// session's current issues.
func (h *APIHandlers) SuggestCorrections(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	corrections, err := h.suggestService.Corrections(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"corrections": corrections})
}

// ApplyCorrections applies reviewed proposals in list order.
func (h *APIHandlers) ApplyCorrections(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var req ApplyCorrectionsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	dataset, err := h.correctionsService.ApplyBatch(c.Context(), id, req.Corrections)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(dataset)
}

// ExportSession builds the cleaned CSV and rules.json bundle. Unresolved
// errors block the export unless force=true is passed.
func (h *APIHandlers) ExportSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	force := false

	if forceStr := c.Query("force"); forceStr != "" {
		parsed, err := strconv.ParseBool(forceStr)
		if err != nil {
			return badRequest(c, "Invalid force parameter")
		}

		force = parsed
	}

	bundle, err := h.exportService.Run(c.Context(), id, force)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ExportResponse{
		ClientsCSV: string(bundle.ClientsCSV),
		WorkersCSV: string(bundle.WorkersCSV),
		TasksCSV:   string(bundle.TasksCSV),
		RulesJSON:  string(bundle.RulesJSON),
	})
}

// tableReaders opens the optional clients, workers and tasks files of a
// multipart upload. Absent files yield nil readers.
func (h *APIHandlers) tableReaders(c fiber.Ctx) (clients, workers, tasks io.Reader, closeAll func(), err error) {
	var closers []io.Closer

	closeAll = func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}

	open := func(field string) (io.Reader, error) {
		header, err := c.FormFile(field)
		if err != nil {
			return nil, nil
		}

		file, err := header.Open()
		if err != nil {
			return nil, err
		}

		closers = append(closers, file)

		return file, nil
	}

	if clients, err = open("clients"); err != nil {
		closeAll()

		return nil, nil, nil, func() {}, err
	}

	if workers, err = open("workers"); err != nil {
		closeAll()

		return nil, nil, nil, func() {}, err
	}

	if tasks, err = open("tasks"); err != nil {
		closeAll()

		return nil, nil, nil, func() {}, err
	}

	return clients, workers, tasks, closeAll, nil
}
