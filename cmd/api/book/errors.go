package book

import (
	"github.com/library-service/cmd/api/pkgerrors"
)

type ErrResponse = pkgerrors.ErrResponse

var ErrResponseValidation = ErrResponse{Kind: pkgerrors.KindValidation, Code: 100, Message: "Validation Error"}
var ErrResponseBookNotFound = ErrResponse{Kind: pkgerrors.KindNotFound, Code: 101, Message: "book not found"}
var ErrResponseEntryInvalidJSON = ErrResponse{Kind: pkgerrors.KindValidation, Code: 102, Message: "invalid json request."}
var ErrResponseIdInvalidFormat = ErrResponse{Kind: pkgerrors.KindValidation, Code: 103, Message: "Invalid book ID: must be a number"}
var ErrResponseNoUpdateFields = ErrResponse{Kind: pkgerrors.KindValidation, Code: 104, Message: "No valid fields provided for update"}
var ErrResponseFromRespository = ErrResponse{Kind: pkgerrors.KindInternal, Code: 108, Message: "Error from repository"}
var ErrResponseOutOfStock = ErrResponse{Kind: pkgerrors.KindOutOfStock, Code: 113, Message: "book is out of stock"}
var ErrResponseTransactionFailed = ErrResponse{Kind: pkgerrors.KindTransactionFailure, Code: 115, Message: "Borrow transaction failed"}
var ErrResponseConflict = ErrResponse{Kind: pkgerrors.KindConflict, Code: 116, Message: "Duplicate Entry"}
var ErrResponseInvalidReference = ErrResponse{Kind: pkgerrors.KindValidation, Code: 117, Message: "Invalid Reference"}

/* Shorthand for a validation failure with a field specific message. */
func validationError(message string) ErrResponse {
	return ErrResponseValidation.WithMessage(message)
}
