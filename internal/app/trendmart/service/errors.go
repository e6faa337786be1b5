package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound    = errors.New("category not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSyncInProgress      = errors.New("sync already in progress")
	ErrUpstreamUnavailable = errors.New("upstream catalog API unavailable")
)
