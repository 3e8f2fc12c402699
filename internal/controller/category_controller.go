package controller

import (
	"github.com/gofiber/fiber/v2"

	"carecompanion-be/internal/dto"
	"carecompanion-be/internal/model"
	"carecompanion-be/internal/pkg/serverutils"
	"carecompanion-be/pkg/category"
)

type ICategoryController interface {
	RegisterRoutes(r fiber.Router)
	QueryCategories(ctx *fiber.Ctx) error
	ContentTypes(ctx *fiber.Ctx) error
}

type categoryController struct{}

func NewCategoryController() ICategoryController {
	return &categoryController{}
}

func (c *categoryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/categories/v1")
	h.Get("query", c.QueryCategories)
	h.Get("content", c.ContentTypes)
}

func (c *categoryController) QueryCategories(ctx *fiber.Ctx) error {
	all := category.All()
	out := make([]string, 0, len(all))
	for _, cat := range all {
		out = append(out, string(cat))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get query categories", dto.CategoryListResponse{
		Categories: out,
	}))
}

func (c *categoryController) ContentTypes(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get content types", dto.CategoryListResponse{
		Categories: []string{
			model.ContentTypeMedicalArticle,
			model.ContentTypeFAQ,
			model.ContentTypePatientGuide,
			model.ContentTypeResearchSummary,
			model.ContentTypeSupportResource,
		},
	}))
}
