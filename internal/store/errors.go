package store

import "scrumbringer-admin/internal/model"

func apiErr(status int, code, msg string) *model.ApiError {
	return &model.ApiError{Status: status, Code: code, Message: msg}
}

func unauthorized() error {
	return apiErr(model.StatusUnauthorized, "unauthorized", "not signed in")
}

func forbidden() error {
	return apiErr(model.StatusForbidden, "forbidden", "not permitted")
}

func notFound(kind string) error {
	return apiErr(model.StatusNotFound, "not_found", kind+" not found")
}

func conflict(code, msg string) error {
	return apiErr(model.StatusConflict, code, msg)
}

func unprocessable(code, msg string) error {
	return apiErr(model.StatusUnprocessable, code, msg)
}

func invalid(msg string) error {
	return apiErr(model.StatusUnprocessable, "validation", msg)
}
