package handlers

import (
	"tree-service/internal/models"
	"tree-service/internal/services"
	"tree-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type SpeciesHandler struct {
	speciesService *services.SpeciesService
}

func NewSpeciesHandler(speciesService *services.SpeciesService) *SpeciesHandler {
	return &SpeciesHandler{speciesService: speciesService}
}

func (h *SpeciesHandler) RegisterRoutes(app *fiber.App) {
	publicGr := app.Group("tree/public/api/v1")
	publicGr.Get("/species", h.ListSpecies)
	publicGr.Get("/species/:name", h.GetSpecies)

	protectedGr := app.Group("tree/protected/api/v1")
	protectedGr.Post("/species", h.CreateSpecies)
	protectedGr.Put("/species/:name", h.UpdateSpecies)
	protectedGr.Delete("/species/:name", h.DeleteSpecies)
}

func (h *SpeciesHandler) ListSpecies(c fiber.Ctx) error {
	species, err := h.speciesService.GetAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(species, len(species)))
}

func (h *SpeciesHandler) GetSpecies(c fiber.Ctx) error {
	species, err := h.speciesService.GetByScientificName(c.Context(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(species))
}

func (h *SpeciesHandler) CreateSpecies(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var species models.Species
	if err := c.Bind().Body(&species); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if err := h.speciesService.Create(c.Context(), &species); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(species))
}

func (h *SpeciesHandler) UpdateSpecies(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var req models.UpdateSpeciesRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	species, err := h.speciesService.Update(c.Context(), c.Params("name"), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(species))
}

func (h *SpeciesHandler) DeleteSpecies(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	if err := h.speciesService.Delete(c.Context(), c.Params("name")); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"deleted": true}))
}
