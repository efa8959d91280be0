package controller

import (
	"askdb-be/internal/dto"
	"askdb-be/internal/pkg/serverutils"
	"askdb-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISchemaController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Count(ctx *fiber.Ctx) error
}

type schemaController struct {
	publisherService service.IPublisherService
	indexerService   service.IIndexerService
}

func NewSchemaController(publisherService service.IPublisherService, indexerService service.IIndexerService) ISchemaController {
	return &schemaController{
		publisherService: publisherService,
		indexerService:   indexerService,
	}
}

func (c *schemaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/schema/v1")
	h.Use(serverutils.JwtMiddleware) // index mutations require auth
	h.Post("", c.Index)
	h.Get("count", c.Count)
}

func (c *schemaController) Index(ctx *fiber.Ctx) error {
	var req dto.IndexSchemaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.publisherService.PublishIndexSchema(&req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Schema document queued for indexing", dto.IndexSchemaResponse{
		TableName: req.TableName,
		Queued:    true,
	}))
}

func (c *schemaController) Count(ctx *fiber.Ctx) error {
	count, err := c.indexerService.Count(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get schema count", dto.SchemaCountResponse{
		Count: count,
	}))
}
