package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stylehub/stylehub-api/internal/application/service"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/presentation/http/dto/request"
	"github.com/stylehub/stylehub-api/internal/presentation/http/dto/response"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List handles listing categories, optionally for one section
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context(), enum.Section(c.Query("section")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category retrieved successfully", category)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), categoryInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category created successfully", category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, categoryInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category updated successfully", category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category deleted successfully", nil)
}

func categoryInput(req *request.CategoryRequest) *service.CategoryInput {
	return &service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Section:     req.Section,
		Image:       req.Image,
		Featured:    req.Featured,
	}
}
