package controller

import (
	"errors"

	"procserv_training_backend/internal/service"
	"procserv_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService service.CatalogService
}

func NewCourseController(catalogService service.CatalogService) *CourseController {
	return &CourseController{CatalogService: catalogService}
}

// ListCourses godoc
// @Summary List the course catalog
// @Tags courses
// @Produce json
// @Success 200 {object} util.Response{data=[]model.CourseType}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// ListModules godoc
// @Summary List a course's modules in order
// @Tags courses
// @Produce json
// @Param id path string true "Course id"
// @Success 200 {object} util.Response{data=[]model.CourseModule}
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/courses/{id}/modules [get]
func (c *CourseController) ListModules(ctx *gin.Context) {
	modules, err := c.CatalogService.ListModules(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}
