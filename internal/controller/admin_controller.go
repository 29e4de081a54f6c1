package controller

import (
	"encoding/json"
	"errors"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/service"
	"procserv_training_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type AdminController struct {
	ContentService *service.ContentService
}

func NewAdminController(contentService *service.ContentService) *AdminController {
	return &AdminController{ContentService: contentService}
}

// swagger:model CreateCourseRequest
type CreateCourseRequest struct {
	Name                string `json:"name" binding:"required"`
	Title               string `json:"title" binding:"required"`
	Description         string `json:"description"`
	DurationHours       int    `json:"duration_hours" binding:"required,min=1"`
	PassingScore        int    `json:"passing_score" binding:"omitempty,min=1,max=100"`
	EthicsHoursRequired int    `json:"ethics_hours_required" binding:"min=0"`
}

// swagger:model CreateModuleRequest
type CreateModuleRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url"`
	DurationMinutes int    `json:"duration_minutes" binding:"min=0"`
	Order           int    `json:"order" binding:"min=0"`
	IsEthics        bool   `json:"is_ethics"`
}

// swagger:model CreateQuestionRequest
type CreateQuestionRequest struct {
	Question      string   `json:"question" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer int      `json:"correct_answer" binding:"min=0"`
	Explanation   string   `json:"explanation"`
}

// CreateCourse godoc
// @Summary Create a course type
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateCourseRequest true "Course payload"
// @Success 201 {object} util.Response{data=model.CourseType}
// @Failure 403 {object} util.Response
// @Router /api/admin/courses [post]
func (c *AdminController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course := &model.CourseType{
		Name:                req.Name,
		Title:               req.Title,
		Description:         req.Description,
		DurationHours:       req.DurationHours,
		PassingScore:        req.PassingScore,
		EthicsHoursRequired: req.EthicsHoursRequired,
	}
	if err := c.ContentService.CreateCourse(ctx.Request.Context(), course); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// CreateModule godoc
// @Summary Add a module to a course
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course id"
// @Param request body CreateModuleRequest true "Module payload"
// @Success 201 {object} util.Response{data=model.CourseModule}
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/admin/courses/{id}/modules [post]
func (c *AdminController) CreateModule(ctx *gin.Context) {
	var req CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module := &model.CourseModule{
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Order:           req.Order,
		IsEthics:        req.IsEthics,
	}
	if err := c.ContentService.CreateModule(ctx.Request.Context(), ctx.Param("id"), module); err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// CreateQuestion godoc
// @Summary Add a quiz question to a module
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Module id"
// @Param request body CreateQuestionRequest true "Question payload"
// @Success 201 {object} util.Response{data=model.QuizQuestion}
// @Failure 404 {object} util.Response "Module not found"
// @Router /api/admin/modules/{id}/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	var req CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.CorrectAnswer >= len(req.Options) {
		util.BadRequest(ctx, "correct_answer is out of range")
		return
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	question := &model.QuizQuestion{
		Question:      req.Question,
		Options:       datatypes.JSON(options),
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
	}
	if err := c.ContentService.CreateQuestion(ctx.Request.Context(), ctx.Param("id"), question); err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx, "Module not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// UploadVideo godoc
// @Summary Upload a module video
// @Description Stores the file and overwrites the module duration with the
// @Description probed video length.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Module id"
// @Param video formData file true "Video file"
// @Success 200 {object} util.Response{data=model.CourseModule}
// @Failure 404 {object} util.Response "Module not found"
// @Router /api/admin/modules/{id}/video [post]
func (c *AdminController) UploadVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "video file is required")
		return
	}

	module, err := c.ContentService.UploadModuleVideo(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx, "Module not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, module)
}
