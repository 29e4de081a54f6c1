package controller

import (
	"errors"

	"procserv_training_backend/internal/service"
	"procserv_training_backend/internal/util"
	"procserv_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// Enroll godoc
// @Summary Enroll the authenticated user in a course
// @Tags enrollments
// @Produce json
// @Security ApiKeyAuth
// @Param course_id path string true "Course id"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response "Already enrolled"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/enroll/{course_id} [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(user.ID, ctx.Param("course_id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.BadRequest(ctx, "Already enrolled in this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	monitoring.EnrollmentCounter.WithLabelValues("direct").Inc()
	util.Created(ctx, enrollment)
}

// MyCourses godoc
// @Summary List the authenticated user's enrollments with progress
// @Tags enrollments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.EnrolledCourse}
// @Router /api/my-courses [get]
func (c *EnrollmentController) MyCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.EnrollmentService.ListForUser(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
