package handlers

import (
	"tree-service/internal/models"
	"tree-service/internal/services"
	"tree-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type TreeHandler struct {
	treeService      *services.TreeService
	ingestionService *services.IngestionService
}

func NewTreeHandler(treeService *services.TreeService, ingestionService *services.IngestionService) *TreeHandler {
	return &TreeHandler{
		treeService:      treeService,
		ingestionService: ingestionService,
	}
}

func (h *TreeHandler) RegisterRoutes(app *fiber.App) {
	publicGr := app.Group("tree/public/api/v1")
	publicGr.Get("/trees", h.ListTrees)
	publicGr.Get("/trees/:id", h.GetTree)
	publicGr.Get("/trees/:id/history", h.GetMonitoringHistory)
	publicGr.Get("/institutions", h.ListInstitutions)

	protectedGr := app.Group("tree/protected/api/v1")
	protectedGr.Post("/trees", h.CreateTree)
	protectedGr.Post("/trees/:id/monitoring", h.RecordMonitoring)
	protectedGr.Post("/trees/:id/qr", h.RegenerateQR)
	protectedGr.Delete("/trees/:id", h.DeleteTree)
}

func (h *TreeHandler) ListTrees(c fiber.Ctx) error {
	institution := c.Query("institution")
	status := c.Query("status")

	trees, err := h.treeService.ListTrees(c.Context(), institution, status)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(trees, len(trees)))
}

func (h *TreeHandler) GetTree(c fiber.Ctx) error {
	treeID := c.Params("id")

	tree, err := h.treeService.GetTree(c.Context(), treeID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(tree))
}

func (h *TreeHandler) GetMonitoringHistory(c fiber.Ctx) error {
	treeID := c.Params("id")

	history, err := h.treeService.GetMonitoringHistory(c.Context(), treeID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(history, len(history)))
}

func (h *TreeHandler) ListInstitutions(c fiber.Ctx) error {
	institutions, err := h.treeService.ListInstitutions(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(institutions, len(institutions)))
}

// CreateTree is the manual planting entry path. The QR artifact is attached
// after the tree is persisted.
func (h *TreeHandler) CreateTree(c fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var req models.CreateTreeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if req.PlanterID == nil {
		req.PlanterID = &userID
	}

	tree, err := h.ingestionService.CreateTree(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	h.treeService.AttachQRCode(c.Context(), tree.TreeID)

	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(tree))
}

func (h *TreeHandler) RecordMonitoring(c fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var req models.CreateMonitoringRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	req.TreeID = c.Params("id")
	if req.MonitorBy == nil {
		req.MonitorBy = &userID
	}

	event, err := h.ingestionService.RecordMonitoring(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(event))
}

func (h *TreeHandler) RegenerateQR(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	artifactURL, err := h.treeService.RegenerateQR(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"tree_id": c.Params("id"),
		"qr_code": artifactURL,
	}))
}

func (h *TreeHandler) DeleteTree(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	if err := h.treeService.DeleteTree(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"deleted": true}))
}
