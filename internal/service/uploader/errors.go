package uploader

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"io"
	"net"
	"net/http"
)

type errClass int

const (
	classFatal errClass = iota
	classRetryable
	classTooLarge
)

// classify sorts store failures into retryable, payload-too-large and fatal.
func classify(err error) errClass {
	if errors.Is(err, constants.ErrPayloadTooLarge) {
		return classTooLarge
	}
	if errors.Is(err, context.Canceled) {
		return classFatal
	}

	var coded *constants.CodedError
	if errors.As(err, &coded) {
		switch code := coded.Code(); {
		case code == http.StatusRequestEntityTooLarge:
			return classTooLarge
		case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
			return classRetryable
		default:
			return classFatal
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return classFatal
		}
		switch pgErr.Code[:2] {
		// connection, transaction rollback, insufficient resources, operator intervention
		case "08", "40", "53", "57":
			return classRetryable
		// program limit exceeded, пачка слишком большая
		case "54":
			return classTooLarge
		default:
			return classFatal
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return classRetryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return classRetryable
	}

	return classFatal
}
