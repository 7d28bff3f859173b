package controller

import (
	"errors"
	"strings"

	"chat-search-be/internal/dto"
	"chat-search-be/internal/pkg/logger"
	"chat-search-be/internal/pkg/serverutils"
	"chat-search-be/internal/service"
	"chat-search-be/pkg/search"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	HybridSearch(ctx *fiber.Ctx) error
	SessionMessages(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
	logger        logger.ILogger
}

func NewSearchController(searchService service.ISearchService, l logger.ILogger) ISearchController {
	return &searchController{
		searchService: searchService,
		logger:        l,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Post("", c.HybridSearch)
	h.Get("session/:id", c.SessionMessages)
}

func (c *searchController) HybridSearch(ctx *fiber.Ctx) error {
	var req dto.HybridSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query is required."})
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query is required."})
	}

	// Reject blank queries here, before any embedding or store call.
	if strings.TrimSpace(req.Query) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query is required."})
	}

	results, err := c.searchService.HybridSearch(ctx.Context(), req.Query)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query is required."})
		}
		c.logger.Error("controller", "hybrid search request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(results)
}

func (c *searchController) SessionMessages(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	if sessionId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session id is required."})
	}

	messages, err := c.searchService.SessionMessages(ctx.Context(), sessionId)
	if err != nil {
		c.logger.Error("controller", "session messages request failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(messages)
}
