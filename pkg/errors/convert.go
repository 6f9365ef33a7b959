package errors

// CodePair maps an error code across frameworks.
type CodePair struct {
	HTTPStatus int
	GRPCCode   int
}

var codeMapping = map[string]CodePair{
	ErrInternal:        {500, 13}, // Internal Server Error, INTERNAL
	ErrNotFound:        {404, 5},  // Not Found, NOT_FOUND
	ErrInvalidArgument: {400, 3},  // Bad Request, INVALID_ARGUMENT
	ErrUnauthenticated: {401, 16}, // Unauthorized, UNAUTHENTICATED
	ErrUnauthorized:    {403, 7},  // Forbidden, PERMISSION_DENIED
	ErrConflict:        {409, 6},  // Conflict, ALREADY_EXISTS
	ErrTimeout:         {504, 4},  // Gateway Timeout, DEADLINE_EXCEEDED
	ErrNotImplemented:  {501, 12}, // Not Implemented, UNIMPLEMENTED
}

// GetCodeMapping returns the HTTP and gRPC codes for an error code.
func GetCodeMapping(code string) (int, int) {
	if pair, ok := codeMapping[code]; ok {
		return pair.HTTPStatus, pair.GRPCCode
	}
	return 500, 13
}

func httpStatusToCode(status int) string {
	switch status {
	case 400:
		return ErrInvalidArgument
	case 401:
		return ErrUnauthenticated
	case 403:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 501:
		return ErrNotImplemented
	case 504:
		return ErrTimeout
	default:
		return ErrInternal
	}
}
