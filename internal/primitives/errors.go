package primitives

import "errors"

// Errors returned by packet construction and the drawing helpers. They are
// wrapped with the offending counts; match with errors.Is.
var (
	ErrArity          = errors.New("primitives: invalid amount of draw data")
	ErrPacketReleased = errors.New("primitives: packet has been released")
	ErrNilPacket      = errors.New("primitives: packet is nil")
	ErrNilPoints      = errors.New("primitives: points array is nil")
	ErrNilColors      = errors.New("primitives: colors array is nil")
	ErrTooFewPoints   = errors.New("primitives: too few points")
	ErrPointCount     = errors.New("primitives: invalid point count")
	ErrColorCount     = errors.New("primitives: color count mismatch")
	ErrInvalidRadius  = errors.New("primitives: invalid radius")
	ErrNoEffectPass   = errors.New("primitives: effect has no passes")
)
