package errors

import (
	stderrors "errors"
)

// HasCode reports whether err, or any error in its chain, carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code.Equals(code) {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetCode returns the code of the outermost coded error in the chain,
// or the empty string when err carries no code.
func GetCode(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code.String()
		}
		err = stderrors.Unwrap(err)
	}
	return ""
}

// GetContext extracts context from a coded error
func GetContext(err error) map[string]string {
	if e, ok := err.(*Error); ok {
		return e.Context
	}
	return nil
}

// AsError converts any error to the internal coded format. Standard
// errors are wrapped under CommonInternal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(CommonInternal, err.Error(), err)
}
