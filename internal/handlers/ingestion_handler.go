package handlers

import (
	"tree-service/internal/services"
	"tree-service/internal/utils"
	"tree-service/internal/worker"

	"github.com/gofiber/fiber/v3"
)

// IngestionHandler exposes manual sync triggers for operators who do not
// want to wait for the next scheduled poll.
type IngestionHandler struct {
	syncJobs *worker.SyncJobs
	store    services.IngestionStore
}

func NewIngestionHandler(syncJobs *worker.SyncJobs, store services.IngestionStore) *IngestionHandler {
	return &IngestionHandler{
		syncJobs: syncJobs,
		store:    store,
	}
}

func (h *IngestionHandler) RegisterRoutes(app *fiber.App) {
	protectedGr := app.Group("tree/protected/api/v1")
	protectedGr.Post("/sync/plantings", h.SyncPlantings)
	protectedGr.Post("/sync/monitoring", h.SyncMonitoring)
	protectedGr.Get("/submissions/:id/processed", h.IsProcessed)
}

func (h *IngestionHandler) SyncPlantings(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	if err := h.syncJobs.SyncPlantings(c.Context()); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"synced": true}))
}

func (h *IngestionHandler) SyncMonitoring(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	if err := h.syncJobs.SyncMonitoring(c.Context()); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"synced": true}))
}

func (h *IngestionHandler) IsProcessed(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	processed, err := h.store.IsProcessed(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"submission_id": c.Params("id"),
		"processed":     processed,
	}))
}
