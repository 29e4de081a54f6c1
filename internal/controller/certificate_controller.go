package controller

import (
	"errors"

	"procserv_training_backend/internal/service"
	"procserv_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// GetCertificate godoc
// @Summary Derive the certificate for a completed enrollment
// @Description Only the enrollment's owner can fetch it, and only once the
// @Description course is completed with a certificate issued.
// @Tags certificates
// @Produce json
// @Security ApiKeyAuth
// @Param enrollment_id path string true "Enrollment id"
// @Success 200 {object} util.Response{data=service.Certificate}
// @Failure 404 {object} util.Response "Certificate not available"
// @Router /api/certificates/{enrollment_id} [get]
func (c *CertificateController) GetCertificate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	certificate, err := c.CertificateService.Issue(ctx.Param("enrollment_id"), user.ID, user)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCertificateNotFound):
			util.NotFound(ctx, "Certificate not available")
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, certificate)
}
