package handlers

import (
	"errors"
	"log"

	"datafarm/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CropHandler handles HTTP requests for crop recommendations.
type CropHandler struct {
	cropService *services.CropService
}

// NewCropHandler creates a new CropHandler.
func NewCropHandler(cropService *services.CropService) *CropHandler {
	return &CropHandler{cropService: cropService}
}

// RegisterRoutes registers the recommendation route with the Fiber app.
func (h *CropHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/recommend-crop", h.HandleRecommend)
}

// HandleRecommend recommends crops for the region given by ?location=.
func (h *CropHandler) HandleRecommend(c *fiber.Ctx) error {
	region := c.Query("location")

	crops, err := h.cropService.Recommend(region)
	switch {
	case err == nil:
		if len(crops) == 0 {
			return c.JSON(fiber.Map{"recommendations": []string{}, "result": "No suitable crops for the current weather"})
		}
		return c.JSON(fiber.Map{"recommendations": crops})
	case errors.Is(err, services.ErrUnknownRegion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "Unknown region",
		})
	case errors.Is(err, services.ErrWeatherUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"result": "Could not fetch weather data",
		})
	default:
		log.Printf("recommend-crop error for %s: %v", region, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result": "Recommendation failed",
		})
	}
}
