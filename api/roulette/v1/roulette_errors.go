package v1

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// ErrorReason 错误原因
type ErrorReason string

const (
	ErrorReason_INVALID_ARGUMENT ErrorReason = "INVALID_ARGUMENT"
	ErrorReason_BATCH_NOT_FOUND  ErrorReason = "BATCH_NOT_FOUND"
	ErrorReason_BATCH_LIMIT      ErrorReason = "BATCH_LIMIT"
	ErrorReason_BATCH_FINISHED   ErrorReason = "BATCH_FINISHED"
)

func (x ErrorReason) String() string { return string(x) }

func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	e := errors.FromError(err)
	return e.Reason == ErrorReason_INVALID_ARGUMENT.String() && e.Code == 400
}

func ErrorInvalidArgument(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ErrorReason_INVALID_ARGUMENT.String(), fmt.Sprintf(format, args...))
}

func IsBatchNotFound(err error) bool {
	if err == nil {
		return false
	}
	e := errors.FromError(err)
	return e.Reason == ErrorReason_BATCH_NOT_FOUND.String() && e.Code == 404
}

func ErrorBatchNotFound(format string, args ...interface{}) *errors.Error {
	return errors.New(404, ErrorReason_BATCH_NOT_FOUND.String(), fmt.Sprintf(format, args...))
}

func IsBatchLimit(err error) bool {
	if err == nil {
		return false
	}
	e := errors.FromError(err)
	return e.Reason == ErrorReason_BATCH_LIMIT.String() && e.Code == 429
}

func ErrorBatchLimit(format string, args ...interface{}) *errors.Error {
	return errors.New(429, ErrorReason_BATCH_LIMIT.String(), fmt.Sprintf(format, args...))
}

func IsBatchFinished(err error) bool {
	if err == nil {
		return false
	}
	e := errors.FromError(err)
	return e.Reason == ErrorReason_BATCH_FINISHED.String() && e.Code == 409
}

func ErrorBatchFinished(format string, args ...interface{}) *errors.Error {
	return errors.New(409, ErrorReason_BATCH_FINISHED.String(), fmt.Sprintf(format, args...))
}
