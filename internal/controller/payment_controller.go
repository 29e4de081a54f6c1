package controller

import (
	"errors"
	"io"
	"net/http"

	"procserv_training_backend/internal/service"
	"procserv_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	PaymentService *service.PaymentService
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{PaymentService: paymentService}
}

// swagger:model CheckoutRequest
type CheckoutRequest struct {
	CourseID  string `json:"course_id" binding:"required"`
	OriginURL string `json:"origin_url" binding:"required,url"`
}

// CreateCheckout godoc
// @Summary Open a checkout session for a course
// @Description The price always comes from the server-side price table.
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CheckoutRequest true "Course and redirect origin"
// @Success 200 {object} util.Response{data=service.CheckoutResult}
// @Failure 400 {object} util.Response "No price configured for course"
// @Failure 404 {object} util.Response "Course not found"
// @Failure 503 {object} util.Response "Payments not configured"
// @Router /api/payments/checkout [post]
func (c *PaymentController) CreateCheckout(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.PaymentService.CreateCheckout(ctx.Request.Context(), user, req.CourseID, req.OriginURL)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPaymentsDisabled):
			util.ServiceUnavailable(ctx, "Payments not configured")
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		case errors.Is(err, util.ErrPriceNotConfigured):
			util.BadRequest(ctx, "No price configured for this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// GetStatus godoc
// @Summary Poll a checkout session and reconcile enrollment
// @Tags payments
// @Produce json
// @Security ApiKeyAuth
// @Param session_id path string true "Checkout session id"
// @Success 200 {object} util.Response{data=service.PaymentStatusResult}
// @Failure 404 {object} util.Response "Payment not found"
// @Failure 503 {object} util.Response "Payments not configured"
// @Router /api/payments/status/{session_id} [get]
func (c *PaymentController) GetStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.PaymentService.PollStatus(ctx.Request.Context(), user.ID, ctx.Param("session_id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPaymentsDisabled):
			util.ServiceUnavailable(ctx, "Payments not configured")
		case errors.Is(err, util.ErrPaymentNotFound):
			util.NotFound(ctx, "Payment not found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Webhook godoc
// @Summary Receive provider webhook events
// @Description Unauthenticated; trust comes from the signature header.
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Signature header"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Invalid signature or payload"
// @Router /api/webhook/stripe [post]
func (c *PaymentController) Webhook(ctx *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 1<<20))
	if err != nil {
		util.BadRequest(ctx, "Unreadable payload")
		return
	}

	err = c.PaymentService.HandleWebhook(body, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPaymentsDisabled):
			util.ServiceUnavailable(ctx, "Payments not configured")
		case errors.Is(err, util.ErrInvalidWebhook):
			util.BadRequest(ctx, "Invalid webhook")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"received": true})
}
