package util

import "errors"

var (
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrModuleNotFound      = errors.New("module not found")
	ErrQuizNotFound        = errors.New("module has no quiz")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this course")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrCertificateNotFound = errors.New("certificate not found or course not completed")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPriceNotConfigured  = errors.New("course price not configured")
	ErrPaymentsDisabled    = errors.New("payment provider not configured")
	ErrInvalidWebhook      = errors.New("invalid webhook payload")
)
