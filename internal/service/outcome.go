package service

import (
	"errors"

	"github.com/vipul43/blogforge/internal/apperr"
)

// outcome labels an operation result for metrics
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrAuthentication),
		errors.Is(err, apperr.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveOAuth(string, string, string) {}
func (nopRecorder) ObserveFetch(string, string)         {}
