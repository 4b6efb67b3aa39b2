package vgm

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Minimum VGM header size. Files below version 1.50 have exactly this
// much header and the command stream starts right after it.
const headerMinSize = 0x40

// Header is the decoded fixed-offset VGM header. Offsets stored here
// are absolute file offsets; the raw header stores them relative to
// their own field position.
//
// The YM clocks are descriptive only: the repository implements the
// SN76489 and treats every other chip declaration as metadata.
type Header struct {
	Version   uint32 // BCD, e.g. 0x0150 for 1.50
	EOFOffset uint32 // absolute end of file data, 0 if unset
	GD3Offset uint32 // absolute offset of the GD3 block, 0 if absent

	TotalSamples uint32
	LoopOffset   uint32 // absolute offset of the loop point, 0 = no loop
	LoopSamples  uint32
	Rate         uint32 // legacy frame rate hint (50/60), 0 = unknown
	DataOffset   uint32 // absolute offset of the first command

	VolumeModifier uint8
	LoopBase       int8
	LoopModifier   uint8

	PSG PSGSetting

	// Declared clocks of chips this renderer does not emulate
	YM2413Clock uint32
	YM2612Clock uint32
	YM2151Clock uint32
}

// ParseHeader decodes the fixed-offset header at the start of an
// uncompressed VGM image.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < headerMinSize {
		return nil, fmt.Errorf("vgm: file too short for header (%d bytes)", len(data))
	}
	if string(data[0:4]) != "Vgm " {
		return nil, fmt.Errorf("vgm: bad file identifier %q", data[0:4])
	}

	h := &Header{
		Version:      binary.LittleEndian.Uint32(data[0x08:0x0C]),
		TotalSamples: binary.LittleEndian.Uint32(data[0x18:0x1C]),
		LoopSamples:  binary.LittleEndian.Uint32(data[0x20:0x24]),
		Rate:         binary.LittleEndian.Uint32(data[0x24:0x28]),
		YM2413Clock:  binary.LittleEndian.Uint32(data[0x10:0x14]),
	}

	if off := binary.LittleEndian.Uint32(data[0x04:0x08]); off != 0 {
		h.EOFOffset = 0x04 + off
	}
	if off := binary.LittleEndian.Uint32(data[0x14:0x18]); off != 0 {
		h.GD3Offset = 0x14 + off
	}
	if off := binary.LittleEndian.Uint32(data[0x1C:0x20]); off != 0 {
		h.LoopOffset = 0x1C + off
	}

	// Data offset field exists from 1.50; earlier files start at 0x40.
	h.DataOffset = headerMinSize
	if h.Version >= 0x150 {
		if off := binary.LittleEndian.Uint32(data[0x34:0x38]); off != 0 {
			h.DataOffset = 0x34 + off
		}
	}
	if int(h.DataOffset) > len(data) {
		return nil, fmt.Errorf("vgm: data offset 0x%X out of range", h.DataOffset)
	}

	psgClock := binary.LittleEndian.Uint32(data[0x0C:0x10])
	h.PSG = PSGSetting{
		Clock:    psgClock & 0x3FFFFFFF,
		Feedback: binary.LittleEndian.Uint16(data[0x28:0x2A]),
		SRWidth:  data[0x2A],
		Flags:    data[0x2B],
		DualChip: psgClock&(1<<30) != 0,
	}
	// Pre-1.10 files leave the LFSR fields zero; the de facto defaults
	// are the 16-bit Sega configuration.
	if h.PSG.Feedback == 0 {
		h.PSG.Feedback = 0x0009
	}
	if h.PSG.SRWidth == 0 {
		h.PSG.SRWidth = 16
	}

	h.YM2612Clock = binary.LittleEndian.Uint32(data[0x2C:0x30])
	h.YM2151Clock = binary.LittleEndian.Uint32(data[0x30:0x34])

	if len(data) >= 0x80 && int(h.DataOffset) >= 0x80 {
		h.VolumeModifier = data[0x7C]
		h.LoopBase = int8(data[0x7E])
		h.LoopModifier = data[0x7F]
	}

	return h, nil
}

// HasLoop reports whether the header declares a playable loop region.
func (h *Header) HasLoop() bool {
	return h.LoopOffset != 0 && h.LoopSamples != 0
}

// Duration returns the track length for a single pass, without loops.
func (h *Header) Duration() time.Duration {
	return time.Duration(h.TotalSamples) * time.Second / psgOutputRate
}

// LoopDuration returns the length of the loop region, 0 when the track
// does not loop.
func (h *Header) LoopDuration() time.Duration {
	if !h.HasLoop() {
		return 0
	}
	return time.Duration(h.LoopSamples) * time.Second / psgOutputRate
}

// VersionString formats the BCD version field, e.g. "1.50".
func (h *Header) VersionString() string {
	return fmt.Sprintf("%x.%02x", h.Version>>8, h.Version&0xFF)
}
