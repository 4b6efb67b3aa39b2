package vgm

import (
	"fmt"
	"time"
)

// SampleFunc is invoked once per produced sample, after every installed
// emulator has advanced. The player's mixing view (LeftOutput,
// RightOutput, MonoOutput) is valid for the just-finished sample. The
// callback must not re-enter the player.
type SampleFunc func(p *Player)

// Player drives a VGM command stream: it reads opcode bytes, dispatches
// them to registered emulator handlers, advances virtual time in
// 44100 Hz sample units and implements loop playback.
//
// The data slice is the music-data region only; byte 0 corresponds to
// the header's data offset, so loop seeks land at
// loopOffset - dataOffset.
type Player struct {
	data []byte
	pos  int

	totalSamples uint32
	loopSamples  uint32
	loopOffset   uint32
	dataOffset   uint32

	handlers  map[uint8]OpcodeHandler
	emulators []Emulator

	position      uint32
	samplesPlayed uint32
	loopsPlayed   uint32
	endOfStream   bool

	sampleFunc SampleFunc
}

// NewPlayer creates a dispatcher over the music-data region described
// by the header. The stream is positioned at the first command.
func NewPlayer(h *Header, data []byte) *Player {
	p := &Player{
		data:         data,
		totalSamples: h.TotalSamples,
		loopSamples:  h.LoopSamples,
		loopOffset:   h.LoopOffset,
		dataOffset:   h.DataOffset,
		handlers:     make(map[uint8]OpcodeHandler),
	}

	p.handlers[0x61] = func(p *Player) error {
		lo, err := p.ReadOperand()
		if err != nil {
			return ErrMalformedWait
		}
		hi, err := p.ReadOperand()
		if err != nil {
			return ErrMalformedWait
		}
		p.AdvanceSample(int(uint16(hi)<<8 | uint16(lo)))
		return nil
	}
	p.handlers[0x62] = func(p *Player) error {
		p.AdvanceSample(735) // one 60 Hz frame
		return nil
	}
	p.handlers[0x63] = func(p *Player) error {
		p.AdvanceSample(882) // one 50 Hz frame
		return nil
	}
	p.handlers[0x66] = func(p *Player) error {
		p.endStream()
		return nil
	}

	return p
}

// Install registers an emulator and merges its opcode handlers. If any
// opcode is already registered, nothing from the emulator is installed.
func (p *Player) Install(e Emulator) error {
	cbs := e.Callbacks()
	for op := range cbs {
		if _, ok := p.handlers[op]; ok {
			return fmt.Errorf("%w: 0x%02X", ErrDuplicateHandler, op)
		}
	}
	for op, h := range cbs {
		p.handlers[op] = h
	}
	p.emulators = append(p.emulators, e)
	return nil
}

// SetSampleFunc sets the per-sample callback.
func (p *Player) SetSampleFunc(fn SampleFunc) {
	p.sampleFunc = fn
}

// Next parses exactly one command. Reaching a 0x66 marker or the end of
// the data region either seeks back to the loop point or marks the
// stream ended; neither is an error.
func (p *Player) Next() error {
	if p.endOfStream {
		return ErrAlreadyEnded
	}
	if p.pos >= len(p.data) {
		p.endStream()
		return nil
	}

	op := p.data[p.pos]
	p.pos++

	h, ok := p.handlers[op]
	if !ok {
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, op)
	}
	return h(p)
}

// ReadOperand reads one operand byte from the data cursor.
func (p *Player) ReadOperand() (uint8, error) {
	if p.pos >= len(p.data) {
		return 0, ErrPrematureEOF
	}
	b := p.data[p.pos]
	p.pos++
	return b, nil
}

// AdvanceSample produces n samples: for each, the counters tick, every
// installed emulator advances by one sample in installation order, and
// the sample callback fires once.
func (p *Player) AdvanceSample(n int) {
	for i := 0; i < n; i++ {
		p.samplesPlayed++
		p.position++
		for _, e := range p.emulators {
			e.AdvanceSample(1)
		}
		if p.sampleFunc != nil {
			p.sampleFunc(p)
		}
	}
}

// endStream runs at a 0x66 marker or at the end of the data region.
func (p *Player) endStream() {
	if p.loopOffset != 0 && p.loopSamples != 0 {
		target := int(p.loopOffset) - int(p.dataOffset)
		if target >= 0 && target < len(p.data) {
			p.position = p.totalSamples - p.loopSamples
			p.pos = target
			p.loopsPlayed++
			return
		}
	}
	p.endOfStream = true
}

// Position returns the sample position within the track, rewinding to
// the loop point on each wrap.
func (p *Player) Position() uint32 {
	return p.position
}

// SamplesPlayed returns the monotonic count of samples produced.
func (p *Player) SamplesPlayed() uint32 {
	return p.samplesPlayed
}

// LoopsPlayed returns how many times the stream wrapped to its loop
// point.
func (p *Player) LoopsPlayed() uint32 {
	return p.loopsPlayed
}

// EndOfStream reports whether playback has terminated. Sticky; Next
// returns ErrAlreadyEnded once set.
func (p *Player) EndOfStream() bool {
	return p.endOfStream
}

// PlayingLoop reports whether the current position lies inside the
// loop region of a loopable track.
func (p *Player) PlayingLoop() bool {
	return p.loopOffset != 0 && p.loopSamples != 0 &&
		p.position >= p.totalSamples-p.loopSamples
}

// Timestamp returns the wall-clock duration of audio produced so far.
func (p *Player) Timestamp() time.Duration {
	return time.Duration(p.samplesPlayed) * time.Second / psgOutputRate
}

// LeftOutput mixes the left channel views of every installed emulator
// into a single float: the mean across emulators of each emulator's
// mean channel value.
func (p *Player) LeftOutput() float32 {
	if len(p.emulators) == 0 {
		return 0
	}
	var sum float32
	for _, e := range p.emulators {
		sum += channelMean(e.LeftChannels())
	}
	return sum / float32(len(p.emulators))
}

// RightOutput is the right-channel counterpart of LeftOutput.
func (p *Player) RightOutput() float32 {
	if len(p.emulators) == 0 {
		return 0
	}
	var sum float32
	for _, e := range p.emulators {
		sum += channelMean(e.RightChannels())
	}
	return sum / float32(len(p.emulators))
}

// MonoOutput averages the two stereo outputs.
func (p *Player) MonoOutput() float32 {
	return (p.LeftOutput() + p.RightOutput()) / 2
}

func channelMean(ch []float32) float32 {
	if len(ch) == 0 {
		return 0
	}
	var sum float32
	for _, v := range ch {
		sum += v
	}
	return sum / float32(len(ch))
}
