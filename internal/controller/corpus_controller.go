package controller

import (
	"github.com/gofiber/fiber/v2"

	"research-tutor-be/internal/pkg/serverutils"
	"research-tutor-be/internal/service"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type corpusController struct {
	corpusService service.ICorpusService
}

func NewCorpusController(corpusService service.ICorpusService) ICorpusController {
	return &corpusController{
		corpusService: corpusService,
	}
}

func (c *corpusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/corpus/v1")
	h.Get("status", c.Status)
	h.Post("reindex", c.Reindex)
}

func (c *corpusController) Status(ctx *fiber.Ctx) error {
	res, err := c.corpusService.Status(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get corpus status", res))
}

func (c *corpusController) Reindex(ctx *fiber.Ctx) error {
	res, err := c.corpusService.Reindex(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success enqueue reindex", res))
}
