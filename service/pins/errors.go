package pins

import "github.com/pkg/errors"

var (
	// AlreadyClaimedError indicates that the line is held by another handle.
	AlreadyClaimedError = errors.New("line already claimed")
	IsAlreadyClaimed    = isErrorFunc(AlreadyClaimedError)
	// UnknownLineError indicates a line that is not in the board tables.
	UnknownLineError = errors.New("unknown line")
	IsUnknownLine    = isErrorFunc(UnknownLineError)
	// InvalidOperationError indicates an operation incompatible with the
	// configured direction of the pin.
	InvalidOperationError = errors.New("invalid operation")
	IsInvalidOperation    = isErrorFunc(InvalidOperationError)
	// OutOfRangeError indicates a duty cycle fraction outside [0,1].
	OutOfRangeError = errors.New("out of range")
	IsOutOfRange    = isErrorFunc(OutOfRangeError)
	// InvalidArgumentError indicates an argument outside its allowed bounds.
	InvalidArgumentError = errors.New("invalid argument")
	IsInvalidArgument    = isErrorFunc(InvalidArgumentError)
	// NotImplementedError indicates a capability this package does not provide.
	NotImplementedError = errors.New("not implemented")
	IsNotImplemented    = isErrorFunc(NotImplementedError)

	maskAny = errors.WithStack
)

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return err == typeOfError || errors.Cause(err) == typeOfError
	}
}
