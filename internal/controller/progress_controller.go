package controller

import (
	"errors"

	"procserv_training_backend/internal/service"
	"procserv_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// swagger:model CompleteModuleRequest
type CompleteModuleRequest struct {
	TimeSpentMinutes int `json:"time_spent_minutes" binding:"min=0"`
}

// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// GetQuiz godoc
// @Summary Fetch a module's quiz without the answer key
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Module id"
// @Success 200 {object} util.Response{data=[]service.QuizView}
// @Failure 404 {object} util.Response "Module or enrollment not found"
// @Router /api/modules/{id}/quiz [get]
func (c *ProgressController) GetQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.ProgressService.GetQuiz(user.ID, ctx.Param("id"))
	if err != nil {
		c.renderError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// CompleteModule godoc
// @Summary Mark a module completed for an enrollment
// @Description Idempotent; repeating the call accumulates time spent and
// @Description re-evaluates course completion.
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Enrollment id"
// @Param module_id path string true "Module id"
// @Param request body CompleteModuleRequest false "Time spent"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response "Enrollment or module not found"
// @Router /api/enrollments/{id}/modules/{module_id}/complete [post]
func (c *ProgressController) CompleteModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteModuleRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	enrollment, err := c.ProgressService.CompleteModule(user.ID, ctx.Param("id"), ctx.Param("module_id"), req.TimeSpentMinutes)
	if err != nil {
		c.renderError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// SubmitQuiz godoc
// @Summary Grade a quiz attempt for an enrollment's module
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Enrollment id"
// @Param module_id path string true "Module id"
// @Param request body SubmitQuizRequest true "Answer indexes, in question order"
// @Success 200 {object} util.Response{data=service.QuizResult}
// @Failure 400 {object} util.Response "Module has no quiz"
// @Failure 404 {object} util.Response "Enrollment or module not found"
// @Router /api/enrollments/{id}/modules/{module_id}/quiz [post]
func (c *ProgressController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, enrollment, err := c.ProgressService.SubmitQuiz(user.ID, ctx.Param("id"), ctx.Param("module_id"), req.Answers)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"result":     result,
		"enrollment": enrollment,
	})
}

func (c *ProgressController) renderError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrEnrollmentNotFound):
		util.NotFound(ctx, "Enrollment not found")
	case errors.Is(err, util.ErrModuleNotFound):
		util.NotFound(ctx, "Module not found")
	case errors.Is(err, util.ErrQuizNotFound):
		util.BadRequest(ctx, "Module has no quiz")
	default:
		util.LogInternalError(ctx, err)
	}
}
