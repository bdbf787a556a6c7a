package openhash

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidArgument reports a bad capacity, load factor, or a zero key
	// offered to a map created WithoutZeroKey.
	ErrInvalidArgument = errors.New("openhash: invalid argument")

	// ErrUnsupportedOperation is raised by immutable containers and by views
	// on writes they cannot perform.
	ErrUnsupportedOperation = errors.New("openhash: unsupported operation")

	// ErrConcurrentModification is reported when a container changed
	// structurally behind the back of an iterator or a Range callback.
	ErrConcurrentModification = errors.New("openhash: concurrent modification")

	// ErrNoSuchElement is returned by Next once an iterator is exhausted.
	ErrNoSuchElement = errors.New("openhash: no such element")

	// ErrIllegalState is returned by Remove or SetValue when there is no
	// current element.
	ErrIllegalState = errors.New("openhash: illegal iterator state")
)
