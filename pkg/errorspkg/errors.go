// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error.
//
// Repositories log the underlying driver error and return ErrInternal, so callers
// never see storage specific failures.
var ErrInternal = errors.New("internal")
