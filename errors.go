package lumen

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
)

// ErrUnsupported is the root cause of errors raised when the device cannot
// serve a request at all: no queue family for a required submit type, no
// memory type satisfying a host-access pattern, an unsupported pixel format,
// or timestamps being unavailable. Callers may degrade gracefully on it.
var ErrUnsupported = errors.New("unsupported on this device")

// ErrPreconditionViolated is the root cause of errors raised when the caller
// handed the runtime something structurally invalid: an illegal barrier
// combination, a zero-sized copy, a nested inline transaction, a bind against
// an empty resource pool, or an out-of-range device index.
var ErrPreconditionViolated = errors.New("precondition violated")

// ErrNotReady is the root cause of errors raised when a result is fetched
// before the device has produced it. The timestamp path resolves this
// internally by waiting, so it only escapes through misuse.
var ErrNotReady = errors.New("result not ready")

func unsupportedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupported, format, args...)
}

func preconditionf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrPreconditionViolated, format, args...)
}

// backendError folds a driver call's (VkResult, error) pair into a single
// error value with the result's stable string form attached. A nil err maps
// to nil regardless of res, matching how the binding reports success codes.
func backendError(res common.VkResult, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(errors.Wrap(err, res.String()), format, args...)
}
