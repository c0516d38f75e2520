// Error taxonomy for the bus (spec §7): argument-validation failures are
// raised as *core.FrameworkError to the caller; runtime dispatch mismatches
// are logged and swallowed (see bus.go for the log-and-return call sites).
package bus

import "github.com/akriventsev/tradebus/framework/core"

// Codes raised to the caller — invalid arguments and table-identity
// violations on register/deregister.
const (
	ErrInvalidArgument  = "BUS_INVALID_ARGUMENT"
	ErrAlreadyRegistered = "BUS_ALREADY_REGISTERED"
	ErrNotRegistered     = "BUS_NOT_REGISTERED"
	ErrHandlerMismatch   = "BUS_HANDLER_MISMATCH"
)

// Codes that are only ever logged (see bus.go), never returned — listed
// here for documentation and for log-field consistency.
const (
	logDuplicateRequestID   = "DUPLICATE_REQUEST_ID"
	logUnknownEndpoint      = "UNKNOWN_ENDPOINT"
	logUnknownCorrelation   = "UNKNOWN_CORRELATION"
	logDuplicateSubscription = "DUPLICATE_SUBSCRIPTION"
	logUnknownSubscription  = "UNKNOWN_SUBSCRIPTION"
)

func newBusError(code, message string) *core.FrameworkError {
	return core.NewError(code, message)
}
