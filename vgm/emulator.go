package vgm

// OpcodeHandler consumes one command's operand bytes from the player's
// data cursor and applies the command. The opcode byte itself has
// already been read when a handler runs.
type OpcodeHandler func(p *Player) error

// Emulator is the contract between the dispatcher and a chip driver.
// The dispatcher knows nothing about the chip behind a handle; this is
// the single extension point for additional chips.
//
// LeftChannels and RightChannels are live views of equal length,
// refreshed by AdvanceSample.
type Emulator interface {
	// Callbacks returns the opcode handlers this emulator services.
	Callbacks() map[uint8]OpcodeHandler

	// AdvanceSample advances the emulator by n 44100 Hz samples.
	AdvanceSample(n int)

	// LeftChannels returns the per-channel outputs routed left.
	LeftChannels() []float32

	// RightChannels returns the per-channel outputs routed right.
	RightChannels() []float32
}
