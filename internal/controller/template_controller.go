package controller

import (
	"errors"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/pkg/serverutils"
	"ai-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITemplateController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Upsert(ctx *fiber.Ctx) error
	ClearCache(ctx *fiber.Ctx) error
	GetSettings(ctx *fiber.Ctx) error
	SaveSettings(ctx *fiber.Ctx) error
}

type templateController struct {
	templateService service.ITemplateService
}

func NewTemplateController(templateService service.ITemplateService) ITemplateController {
	return &templateController{templateService: templateService}
}

func (c *templateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/support/v1")
	h.Get("templates/:companyId", c.List)
	h.Put("templates/:companyId/:key", c.Upsert)
	h.Delete("templates/:companyId/cache", c.ClearCache)
	h.Get("settings/:companyId", c.GetSettings)
	h.Put("settings/:companyId", c.SaveSettings)
}

func companyIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("companyId"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "companyId must be a valid UUID")
	}
	return id, nil
}

func (c *templateController) List(ctx *fiber.Ctx) error {
	companyId, err := companyIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.templateService.List(ctx.UserContext(), companyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get templates", res))
}

func (c *templateController) Upsert(ctx *fiber.Ctx) error {
	companyId, err := companyIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpsertTemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.templateService.Upsert(ctx.UserContext(), companyId, ctx.Params("key"), &req)
	if errors.Is(err, service.ErrUnknownTemplateKey) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save template", res))
}

func (c *templateController) ClearCache(ctx *fiber.Ctx) error {
	companyId, err := companyIdParam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear cache", c.templateService.ClearCache(companyId)))
}

func (c *templateController) GetSettings(ctx *fiber.Ctx) error {
	companyId, err := companyIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.templateService.GetSettings(ctx.UserContext(), companyId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "settings not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get settings", res))
}

func (c *templateController) SaveSettings(ctx *fiber.Ctx) error {
	companyId, err := companyIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.CompanySettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.templateService.SaveSettings(ctx.UserContext(), companyId, &req)
	if errors.Is(err, service.ErrInvalidRules) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save settings", res))
}
