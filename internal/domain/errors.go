package domain

import "errors"

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindIntegrity  ErrorKind = "integrity"
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
)

// Error - типизированная ошибка домена. Сравнивается через errors.Is
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// Validation
	ErrInvalidEventAmount  = newError(KindValidation, "INVALID_EVENT_AMOUNT", "event amount must be positive")
	ErrInvalidShaveValue   = newError(KindValidation, "INVALID_SHAVE_VALUE", "invalid shave value")
	ErrCycleDetected       = newError(KindValidation, "CYCLE_DETECTED", "shave edge would create a commission cycle")
	ErrSelfReferencingEdge = newError(KindValidation, "SELF_REFERENCING_EDGE", "shave edge cannot point to its own source")
	ErrWindowClosed        = newError(KindValidation, "WINDOW_CLOSED", "requests of this category are not accepted right now")
	ErrBalanceExceeded     = newError(KindValidation, "BALANCE_EXCEEDED", "amount exceeds the unpaid balance")
	ErrDuplicatePending    = newError(KindValidation, "DUPLICATE_PENDING", "there is already an unresolved request of this category")
	ErrReasonRequired      = newError(KindValidation, "REASON_REQUIRED", "decline reason is required")
	ErrInvalidAmount       = newError(KindValidation, "INVALID_AMOUNT", "amount must be positive")
	ErrInvalidDeal         = newError(KindValidation, "INVALID_DEAL", "invalid deal terms")
	ErrInvalidEvent        = newError(KindValidation, "INVALID_EVENT", "malformed revenue event")
	ErrInvalidRequest      = newError(KindValidation, "INVALID_REQUEST", "malformed request")
	ErrUnknownCategory     = newError(KindValidation, "UNKNOWN_CATEGORY", "unknown request category")
	ErrCategoryNotAllowed  = newError(KindValidation, "CATEGORY_NOT_ALLOWED", "request category is not available for this role")
	ErrInsufficientUnpaid  = newError(KindValidation, "INSUFFICIENT_UNPAID", "insufficient unpaid balance")

	// Conflict
	ErrNotPending = newError(KindConflict, "NOT_PENDING", "this request already has a resolution")

	// Integrity
	ErrLedgerIntegrity = newError(KindIntegrity, "LEDGER_INTEGRITY", "ledger integrity violation")

	// Not found / forbidden
	ErrUserNotFound    = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrDealNotFound    = newError(KindNotFound, "DEAL_NOT_FOUND", "deal not found")
	ErrEdgeNotFound    = newError(KindNotFound, "EDGE_NOT_FOUND", "shave edge not found")
	ErrRequestNotFound = newError(KindNotFound, "REQUEST_NOT_FOUND", "request not found")
	ErrForbidden       = newError(KindForbidden, "FORBIDDEN", "action is not allowed for this user")
)

// KindOf возвращает тип ошибки домена; для прочих ошибок - пустую строку
func KindOf(err error) ErrorKind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return ""
}

// CodeOf возвращает код ошибки домена
func CodeOf(err error) string {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}
