package constants

import "net/http"

type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound            = NewCodedError(http.StatusNotFound, "not found")
	ErrUnauthorized          = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrMissingAuthToken      = NewCodedError(http.StatusUnauthorized, "missing auth token")
	ErrBadRequest            = NewCodedError(http.StatusBadRequest, "bad request")
	ErrPayloadTooLarge       = NewCodedError(http.StatusRequestEntityTooLarge, "payload too large")
	ErrSnapshotAlreadyActual = NewCodedError(http.StatusConflict, "price list with this content is already actual for the provider")
	ErrUploadNotFound        = NewCodedError(http.StatusNotFound, "upload not found")
	ErrInvalidTransition     = NewCodedError(http.StatusConflict, "history status transition is not allowed")
	ErrEmptyFile             = NewCodedError(http.StatusBadRequest, "file has no data rows")
	ErrNoSheet               = NewCodedError(http.StatusBadRequest, "workbook has no sheets")
	ErrUnsupportedFormat     = NewCodedError(http.StatusBadRequest, "unsupported file format")
)
