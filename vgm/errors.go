package vgm

import "errors"

// Errors surfaced by the dispatcher and the chip constructors. Opcode
// and register specifics are attached by wrapping with fmt.Errorf, so
// callers match with errors.Is.
var (
	// ErrPrematureEOF means an opcode handler could not read all of
	// its operand bytes. Dispatcher state is undefined afterwards.
	ErrPrematureEOF = errors.New("vgm: premature end of data")

	// ErrUnknownOpcode means no handler is registered for the opcode
	// just read.
	ErrUnknownOpcode = errors.New("vgm: unknown opcode")

	// ErrDuplicateHandler means an Install collided with an already
	// registered opcode. Nothing from the conflicting emulator is
	// registered.
	ErrDuplicateHandler = errors.New("vgm: duplicate opcode handler")

	// ErrDualChipDisabled means a second-chip opcode (0x30/0x3F)
	// appeared in a stream whose header did not enable dual chip.
	ErrDualChipDisabled = errors.New("vgm: dual chip not enabled")

	// ErrAlreadyEnded means Next was called after end of stream.
	ErrAlreadyEnded = errors.New("vgm: stream already ended")

	// ErrMalformedWait means a 0x61 wait command was truncated.
	ErrMalformedWait = errors.New("vgm: malformed wait command")

	// ErrInvalidSetting means a chip was constructed from an
	// out-of-range header setting.
	ErrInvalidSetting = errors.New("vgm: invalid chip setting")
)
