package gridpath

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSelection is the parent of every rejected start/end choice.
	// Rejections leave the selection unchanged.
	ErrInvalidSelection = errors.New("invalid selection")
	ErrCellBlocked      = fmt.Errorf("%w: cell is blocked", ErrInvalidSelection)
	ErrSameEndpoints    = fmt.Errorf("%w: start and end must differ", ErrInvalidSelection)
	ErrOutOfRange       = fmt.Errorf("%w: cell is outside the grid", ErrInvalidSelection)

	// ErrSuperseded is returned to a synchronous caller whose request was
	// replaced by a newer one before it completed.
	ErrSuperseded = errors.New("search superseded")
	// ErrShutdown rejects submissions once the controller is shutting down.
	ErrShutdown = errors.New("controller is shut down")

	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrInvalidPath       = errors.New("invalid path")
)
