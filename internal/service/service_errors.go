package service

import "errors"

var (
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrProductUnavailable      = errors.New("product is not available")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrOrderAccessDenied       = errors.New("no permission for this order")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)
