package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/pkg/serverutils"
	"research-tutor-be/internal/service"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Resume(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	SetWorldview(ctx *fiber.Ctx) error
	SetMethodology(ctx *fiber.Ctx) error
	AdvanceStep(ctx *fiber.Ctx) error
	SaveStepData(ctx *fiber.Ctx) error
	GetStepData(ctx *fiber.Ctx) error
	GetStepConfig(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.OwnerRefMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get("resume", c.Resume)
	h.Post("worldview", c.SetWorldview)
	h.Post("methodology", c.SetMethodology)
	h.Post("step", c.AdvanceStep)
	h.Get(":id", c.Show)
	h.Put(":id/step/:n/data", c.SaveStepData)
	h.Get(":id/step/:n/data", c.GetStepData)
	h.Get(":id/step/:n/config", c.GetStepConfig)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.sessionService.Create(ctx.Context(), serverutils.OwnerRef(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Resume(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Resume(ctx.Context(), serverutils.OwnerRef(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resume session", res))
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	res, err := c.sessionService.List(ctx.Context(), serverutils.OwnerRef(ctx),
		ctx.QueryInt("limit", 20), ctx.QueryInt("offset", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.sessionService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) SetWorldview(ctx *fiber.Ctx) error {
	var req dto.SetWorldviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetWorldview(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set worldview", res))
}

func (c *sessionController) SetMethodology(ctx *fiber.Ctx) error {
	var req dto.SetMethodologyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetMethodology(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set methodology", res))
}

func (c *sessionController) AdvanceStep(ctx *fiber.Ctx) error {
	var req dto.AdvanceStepRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.AdvanceStep(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success advance step", res))
}

func (c *sessionController) SaveStepData(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	step, err := ctx.ParamsInt("n")
	if err != nil {
		return serverutils.NewBadRequest("Invalid step number")
	}

	var req dto.SaveStepDataRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.Data == nil {
		return serverutils.NewBadRequest("Missing step data payload")
	}

	res, err := c.sessionService.SaveStepData(ctx.Context(), id, step, req.Data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save step data", res))
}

func (c *sessionController) GetStepData(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	step, err := ctx.ParamsInt("n")
	if err != nil {
		return serverutils.NewBadRequest("Invalid step number")
	}

	res, err := c.sessionService.GetStepData(ctx.Context(), id, step)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get step data", res))
}

func (c *sessionController) GetStepConfig(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	step, err := ctx.ParamsInt("n")
	if err != nil {
		return serverutils.NewBadRequest("Invalid step number")
	}

	res, err := c.sessionService.GetStepConfig(ctx.Context(), id, step)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get step config", res))
}

func parseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, serverutils.NewBadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}
