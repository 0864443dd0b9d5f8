package handlers

import (
	"tree-service/internal/services"
	"tree-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(app *fiber.App) {
	publicGr := app.Group("tree/public/api/v1")
	publicGr.Get("/dashboard/impact", h.GetImpactStats)
	publicGr.Get("/dashboard/institutions", h.GetInstitutionStats)
	publicGr.Get("/dashboard/monitoring", h.GetMonitoringStats)
	publicGr.Get("/dashboard/recent", h.GetRecentTrees)
}

func (h *DashboardHandler) GetImpactStats(c fiber.Ctx) error {
	stats, err := h.dashboardService.GetImpactStats(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(stats))
}

func (h *DashboardHandler) GetInstitutionStats(c fiber.Ctx) error {
	stats, err := h.dashboardService.GetInstitutionStats(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(stats, len(stats)))
}

func (h *DashboardHandler) GetMonitoringStats(c fiber.Ctx) error {
	stats, err := h.dashboardService.GetMonitoringStats(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(stats))
}

func (h *DashboardHandler) GetRecentTrees(c fiber.Ctx) error {
	trees, err := h.dashboardService.GetRecentTrees(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(trees, len(trees)))
}
