package dispatch

import (
	"errors"

	"github.com/Faultbox/midgard-gfx/internal/mesh"
)

var (
	ErrArgCount        = errors.New("dispatch: wrong argument count")
	ErrArgType         = errors.New("dispatch: wrong argument type")
	ErrUnknownFunction = errors.New("dispatch: unknown function")
	ErrUnknownField    = errors.New("dispatch: unknown mesh field")

	// Shared with the mesh package so either can be matched.
	ErrSlotOutOfRange = mesh.ErrSlotOutOfRange
	ErrTexCoordRange  = mesh.ErrTexCoordRange
)
