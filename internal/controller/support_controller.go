package controller

import (
	"ai-support-be/internal/dto"
	"ai-support-be/internal/pkg/serverutils"
	"ai-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISupportController interface {
	RegisterRoutes(r fiber.Router)
	Reply(ctx *fiber.Ctx) error
	Preview(ctx *fiber.Ctx) error
}

type supportController struct {
	supportService service.ISupportService
}

func NewSupportController(supportService service.ISupportService) ISupportController {
	return &supportController{supportService: supportService}
}

func (c *supportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/support/v1")
	h.Post("reply", c.Reply)
	h.Post("prompt/preview", c.Preview)
}

func (c *supportController) parse(ctx *fiber.Ctx) (*dto.ReplyRequest, uuid.UUID, error) {
	var req dto.ReplyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, uuid.Nil, err
	}
	companyId, err := uuid.Parse(req.CompanyId)
	if err != nil {
		return nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "company_id must be a valid UUID")
	}
	return &req, companyId, nil
}

// Reply always answers 200; a suppressed turn has a null reply and a silent_reason.
func (c *supportController) Reply(ctx *fiber.Ctx) error {
	req, companyId, err := c.parse(ctx)
	if err != nil {
		return err
	}

	res, err := c.supportService.Reply(ctx.UserContext(), companyId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate reply", res))
}

func (c *supportController) Preview(ctx *fiber.Ctx) error {
	req, companyId, err := c.parse(ctx)
	if err != nil {
		return err
	}

	res, err := c.supportService.Preview(ctx.UserContext(), companyId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success build prompt", res))
}
