package vgm

// Compile-time interface check.
var _ Emulator = (*PSGEmulator)(nil)

// PSGEmulator wraps one or two PSG chips as an Emulator. It services
// the PSG opcodes, routes each chip's channels through its Game Gear
// stereo mask, and exposes the gated outputs as the left/right views.
//
// The stereo mask byte is L3 L2 L1 L0 R3 R2 R1 R0 per chip, channel 3
// being noise. Power-on mask is 0xFF: every channel on both sides.
type PSGEmulator struct {
	chips     []*PSG
	ggStereo  []uint8
	stereoOff bool

	left  []float32
	right []float32
}

// NewPSGEmulator builds a driver from a header setting. Two chip
// instances are created when the setting declares dual chip.
func NewPSGEmulator(s PSGSetting) (*PSGEmulator, error) {
	n := 1
	if s.DualChip {
		n = 2
	}

	e := &PSGEmulator{
		chips:     make([]*PSG, n),
		ggStereo:  make([]uint8, n),
		stereoOff: s.Flags&PSGStereoOff != 0,
		left:      make([]float32, 4*n),
		right:     make([]float32, 4*n),
	}
	for i := range e.chips {
		chip, err := NewPSG(s)
		if err != nil {
			return nil, err
		}
		e.chips[i] = chip
		e.ggStereo[i] = 0xFF
	}
	return e, nil
}

// Callbacks returns the PSG opcode handlers: 0x50/0x4F for the first
// chip, 0x30/0x3F for the second. The second-chip opcodes reject the
// stream before touching their operand when dual chip is off.
func (e *PSGEmulator) Callbacks() map[uint8]OpcodeHandler {
	return map[uint8]OpcodeHandler{
		0x50: func(p *Player) error {
			return e.handleWrite(p, 0)
		},
		0x30: func(p *Player) error {
			if len(e.chips) < 2 {
				return ErrDualChipDisabled
			}
			return e.handleWrite(p, 1)
		},
		0x4F: func(p *Player) error {
			return e.handleStereo(p, 0)
		},
		0x3F: func(p *Player) error {
			if len(e.chips) < 2 {
				return ErrDualChipDisabled
			}
			return e.handleStereo(p, 1)
		},
	}
}

func (e *PSGEmulator) handleWrite(p *Player, chip int) error {
	b, err := p.ReadOperand()
	if err != nil {
		return err
	}
	e.chips[chip].Write(b)
	return nil
}

func (e *PSGEmulator) handleStereo(p *Player, chip int) error {
	b, err := p.ReadOperand()
	if err != nil {
		return err
	}
	if !e.stereoOff {
		e.ggStereo[chip] = b
	}
	return nil
}

// AdvanceSample advances every chip by n samples, refreshing the
// stereo-gated channel views after each.
func (e *PSGEmulator) AdvanceSample(n int) {
	for s := 0; s < n; s++ {
		for k, chip := range e.chips {
			chip.AdvanceOneSample()
			ch := chip.Channels()
			mask := e.ggStereo[k]
			for j := 0; j < 4; j++ {
				if mask&(1<<(j+4)) != 0 {
					e.left[4*k+j] = ch[j]
				} else {
					e.left[4*k+j] = 0
				}
				if mask&(1<<j) != 0 {
					e.right[4*k+j] = ch[j]
				} else {
					e.right[4*k+j] = 0
				}
			}
		}
	}
}

// LeftChannels returns the left-routed channel view, 4 entries per chip.
func (e *PSGEmulator) LeftChannels() []float32 {
	return e.left
}

// RightChannels returns the right-routed channel view, 4 entries per chip.
func (e *PSGEmulator) RightChannels() []float32 {
	return e.right
}

// Chip returns the underlying chip instance (for testing and
// diagnostics). Index 0 is the chip addressed by 0x50.
func (e *PSGEmulator) Chip(i int) *PSG {
	return e.chips[i]
}

// NumChips returns the number of chip instances (1 or 2).
func (e *PSGEmulator) NumChips() int {
	return len(e.chips)
}

// GGStereo returns the current stereo mask for the given chip.
func (e *PSGEmulator) GGStereo(chip int) uint8 {
	return e.ggStereo[chip]
}
