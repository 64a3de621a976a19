package httperr

import "errors"

// BadRequestError is a client error identified by a stable code. Two errors
// with the same code match under errors.Is, whatever their detail.
type BadRequestError struct {
	code   string
	detail string
}

func (e *BadRequestError) Error() string {
	if e.detail == "" {
		return e.code
	}
	return e.code + ": " + e.detail
}

func (e *BadRequestError) Code() string { return e.code }

func (e *BadRequestError) Detail() string { return e.detail }

func (e *BadRequestError) Is(target error) bool {
	t, ok := target.(*BadRequestError)
	return ok && t.code == e.code
}

func NewBadRequest(code string) error { return &BadRequestError{code: code} }

// WithDetail returns a copy of a bad request error carrying detail. Other
// errors are returned unchanged.
func WithDetail(err error, detail string) error {
	e, ok := errors.AsType[*BadRequestError](err)
	if !ok {
		return err
	}
	return &BadRequestError{code: e.code, detail: detail}
}

func IsBadRequest(err error) bool {
	_, ok := errors.AsType[*BadRequestError](err)
	return ok
}

// Code returns the code of a bad request error, or "".
func Code(err error) string {
	e, ok := errors.AsType[*BadRequestError](err)
	if !ok {
		return ""
	}
	return e.code
}
