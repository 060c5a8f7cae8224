package pkgerrors

// Kind is the error category sent to clients in the "error" field.
type Kind string

const (
	KindMissingHeader      Kind = "MissingHeader"
	KindInvalidRole        Kind = "InvalidRole"
	KindInvalidIdentity    Kind = "InvalidIdentity"
	KindForbidden          Kind = "Forbidden"
	KindValidation         Kind = "ValidationError"
	KindNotFound           Kind = "NotFound"
	KindOutOfStock         Kind = "OutOfStock"
	KindTransactionFailure Kind = "TransactionFailure"
	KindConflict           Kind = "ConflictError"
	KindRequestTimeout     Kind = "RequestTimeout"
	KindInternal           Kind = "InternalServerError"
)

type ErrResponse struct {
	Kind    Kind   `json:"error"`
	Code    int    `json:"error_code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e ErrResponse) Error() string {
	return e.Message
}

/* Two responses are the same error when they share a code, whatever the message says. */
func (e ErrResponse) Is(target error) bool {
	t, ok := target.(ErrResponse)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

/* Returns a copy of the error carrying a more specific message. */
func (e ErrResponse) WithMessage(message string) ErrResponse {
	e.Message = message
	return e
}

func (e ErrResponse) WithDetails(details any) ErrResponse {
	e.Details = details
	return e
}

var ErrResponseInternal = ErrResponse{KindInternal, 500, "Internal Server Error", nil}
var ErrResponseRequestTimeout = ErrResponse{KindRequestTimeout, 109, "error from context:", nil}
var ErrResponseRouteNotFound = ErrResponse{KindNotFound, 119, "Route not found", nil}
