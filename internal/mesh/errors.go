package mesh

import "errors"

// Errors returned by mesh construction, drawing, mutation and lookup.
var (
	ErrNoDevice            = errors.New("mesh: graphics device is nil")
	ErrNoRegistry          = errors.New("mesh: registry is nil")
	ErrInvalidTexture      = errors.New("mesh: invalid texture (nil or released)")
	ErrNilArray            = errors.New("mesh: required array is nil")
	ErrConflictingGeometry = errors.New("mesh: positions and prebuilt vertices are mutually exclusive")
	ErrEmptyGeometry       = errors.New("mesh: geometry is empty")
	ErrLengthMismatch      = errors.New("mesh: arrays must have equal length")
	ErrVertexCount         = errors.New("mesh: vertex array length must be a multiple of 3")
	ErrIndexCount          = errors.New("mesh: index array length must be a non-zero multiple of 3")
	ErrIndexRange          = errors.New("mesh: index out of range")
	ErrTexCoordRange       = errors.New("mesh: texture coordinate out of range")
	ErrSlotOutOfRange      = errors.New("mesh: vertex slot out of range")
	ErrNotFinite           = errors.New("mesh: non-finite transform parameter")
	ErrZeroScale           = errors.New("mesh: scale has a zero component")
	ErrCounterClockwise    = errors.New("mesh: counter-clockwise triangle")
	ErrDisposed            = errors.New("mesh: mesh has been disposed")
	ErrNotFound            = errors.New("mesh: no mesh registered under id")
)
