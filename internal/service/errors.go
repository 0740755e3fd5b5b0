package service

type ErrorCode string

const (
	ErrorCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrorCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeInvalidBody     ErrorCode = "INVALID_BODY"
	ErrorCodeMemberExists    ErrorCode = "MEMBER_EXISTS"
	ErrorCodeRateLimited     ErrorCode = "RATE_LIMITED"
	ErrorCodeUnspecified     ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}

// ErrUnauthenticated is the uniform failure returned for every operation
// attempted without a resolved actor, regardless of which one it was.
func ErrUnauthenticated() *Error {
	return NewError(ErrorCodeUnauthenticated, "authentication required")
}
