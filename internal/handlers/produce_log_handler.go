package handlers

import (
	"errors"
	"log"
	"strconv"

	"datafarm/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProduceLogHandler handles HTTP requests for harvest records.
type ProduceLogHandler struct {
	logService *services.ProduceLogService
	validate   *validator.Validate
}

// NewProduceLogHandler creates a new ProduceLogHandler.
func NewProduceLogHandler(logService *services.ProduceLogService) *ProduceLogHandler {
	return &ProduceLogHandler{
		logService: logService,
		validate:   validator.New(),
	}
}

// RegisterRoutes registers the produce-log routes with the Fiber app.
func (h *ProduceLogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/produce-logs", h.HandleList)
	router.Post("/produce-logs", h.HandleAdd)
	router.Delete("/produce-logs/:id", h.HandleDelete)
}

// HandleList returns all records for the user given by ?user_id=.
func (h *ProduceLogHandler) HandleList(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "user_id must be a positive integer",
		})
	}

	logs, err := h.logService.List(uint(userID))
	if err != nil {
		log.Printf("Error listing produce logs for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result": "Could not list produce logs",
		})
	}
	return c.JSON(fiber.Map{"logs": logs})
}

// ProduceLogRequest represents the request body for adding a record.
type ProduceLogRequest struct {
	UserID         uint    `json:"userId" validate:"required"`
	CropName       string  `json:"cropName" validate:"required"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	ProductionDate string  `json:"productionDate" validate:"required,datetime=2006-01-02"`
}

// HandleAdd records a new harvest entry.
func (h *ProduceLogHandler) HandleAdd(c *fiber.Ctx) error {
	var req ProduceLogRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing produce-log request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	entry, err := h.logService.Add(req.UserID, req.CropName, req.Quantity, req.ProductionDate)
	if err != nil {
		log.Printf("Error adding produce log for user %d: %v", req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result": "Could not add produce log",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"result": "Produce log added",
		"log":    entry,
	})
}

// HandleDelete removes a record by id.
func (h *ProduceLogHandler) HandleDelete(c *fiber.Ctx) error {
	logID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "id must be a positive integer",
		})
	}

	if err := h.logService.Delete(uint(logID)); err != nil {
		if errors.Is(err, services.ErrLogNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"result": "Produce log not found",
			})
		}
		log.Printf("Error deleting produce log %d: %v", logID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result": "Could not delete produce log",
		})
	}
	return c.JSON(fiber.Map{"result": "Produce log deleted"})
}
