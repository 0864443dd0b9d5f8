package handlers

import (
	"tree-service/internal/models"
	"tree-service/internal/services"
	"tree-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type DonationHandler struct {
	donationService *services.DonationService
}

func NewDonationHandler(donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

func (h *DonationHandler) RegisterRoutes(app *fiber.App) {
	publicGr := app.Group("tree/public/api/v1")
	publicGr.Post("/donations", h.CreateDonation)
	publicGr.Get("/donations/:id", h.GetDonation)
	publicGr.Get("/donations", h.ListDonations)
	publicGr.Get("/qualified-institutions", h.ListQualifiedInstitutions)

	protectedGr := app.Group("tree/protected/api/v1")
	protectedGr.Put("/qualifications", h.SetQualification)
}

func (h *DonationHandler) CreateDonation(c fiber.Ctx) error {
	var req models.CreateDonationRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	donation, err := h.donationService.CreateDonation(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(donation))
}

func (h *DonationHandler) GetDonation(c fiber.Ctx) error {
	donation, err := h.donationService.GetDonation(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(donation))
}

func (h *DonationHandler) ListDonations(c fiber.Ctx) error {
	email := c.Query("email")

	donations, err := h.donationService.ListByDonorEmail(c.Context(), email)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(donations, len(donations)))
}

func (h *DonationHandler) ListQualifiedInstitutions(c fiber.Ctx) error {
	quals, err := h.donationService.QualifiedInstitutions(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateListResponse(quals, len(quals)))
}

func (h *DonationHandler) SetQualification(c fiber.Ctx) error {
	if _, ok := requireUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var qual models.InstitutionQualification
	if err := c.Bind().Body(&qual); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if err := h.donationService.SetQualification(c.Context(), &qual); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(qual))
}
