package vgm

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "GoVGMState\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + dataCRC(4) + payloadCRC(4)

	playerSerializeSize = 17 // pos(4) + position(4) + samplesPlayed(4) + loopsPlayed(4) + endOfStream(1)
	psgSerializeSize    = 53
)

// StateSerializer is implemented by emulators that can snapshot their
// state into a player save state. Emulators that do not implement it
// make the owning player unserializable.
type StateSerializer interface {
	SerializeSize() int
	Serialize(buf []byte) error
	Deserialize(buf []byte) error
}

var _ StateSerializer = (*PSG)(nil)
var _ StateSerializer = (*PSGEmulator)(nil)

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SerializeSize returns the number of bytes needed to serialize the
// chip state. Setting-derived constants are not included; the caller
// reconstructs those through NewPSG.
func (p *PSG) SerializeSize() int {
	return psgSerializeSize
}

// Serialize writes all mutable chip state into buf in a compact
// little-endian binary format.
func (p *PSG) Serialize(buf []byte) error {
	if len(buf) < psgSerializeSize {
		return errors.New("vgm: psg serialize buffer too small")
	}

	buf[0] = stateVersion
	offset := 1
	for i := range p.tone {
		binary.LittleEndian.PutUint16(buf[offset:], p.tone[i].freq)
		buf[offset+2] = p.tone[i].volume
		binary.LittleEndian.PutUint32(buf[offset+3:], uint32(p.tone[i].count))
		buf[offset+7] = boolByte(p.tone[i].edge)
		buf[offset+8] = boolByte(p.tone[i].mute)
		offset += 9
	}
	buf[offset] = p.noiseMode
	buf[offset+1] = boolByte(p.noiseRef)
	binary.LittleEndian.PutUint16(buf[offset+2:], p.noiseFreq)
	buf[offset+4] = p.noiseVolume
	binary.LittleEndian.PutUint32(buf[offset+5:], uint32(p.noiseCount))
	binary.LittleEndian.PutUint16(buf[offset+9:], p.noiseSeed)
	offset += 11
	buf[offset] = p.adr
	binary.LittleEndian.PutUint32(buf[offset+1:], uint32(p.baseCount))
	return nil
}

// Deserialize restores all mutable chip state from buf, which must
// have been produced by Serialize against the same setting.
func (p *PSG) Deserialize(buf []byte) error {
	if len(buf) < psgSerializeSize {
		return errors.New("vgm: psg deserialize buffer too small")
	}
	if buf[0] != stateVersion {
		return errors.New("vgm: unsupported psg state version")
	}

	offset := 1
	for i := range p.tone {
		p.tone[i].freq = binary.LittleEndian.Uint16(buf[offset:])
		p.tone[i].volume = buf[offset+2]
		p.tone[i].count = int32(binary.LittleEndian.Uint32(buf[offset+3:]))
		p.tone[i].edge = buf[offset+7] != 0
		p.tone[i].mute = buf[offset+8] != 0
		offset += 9
	}
	p.noiseMode = buf[offset]
	p.noiseRef = buf[offset+1] != 0
	p.noiseFreq = binary.LittleEndian.Uint16(buf[offset+2:])
	p.noiseVolume = buf[offset+4]
	p.noiseCount = int32(binary.LittleEndian.Uint32(buf[offset+5:]))
	p.noiseSeed = binary.LittleEndian.Uint16(buf[offset+9:])
	offset += 11
	p.adr = buf[offset]
	p.baseCount = int32(binary.LittleEndian.Uint32(buf[offset+1:]))
	return nil
}

// SerializeSize returns the byte count for the driver's state: every
// chip plus its stereo mask.
func (e *PSGEmulator) SerializeSize() int {
	return len(e.chips) * (psgSerializeSize + 1)
}

// Serialize writes the driver state: each chip followed by its stereo
// mask. The channel views are derived and rebuilt on the next advance.
func (e *PSGEmulator) Serialize(buf []byte) error {
	if len(buf) < e.SerializeSize() {
		return errors.New("vgm: psg driver serialize buffer too small")
	}
	offset := 0
	for i, chip := range e.chips {
		if err := chip.Serialize(buf[offset:]); err != nil {
			return err
		}
		offset += psgSerializeSize
		buf[offset] = e.ggStereo[i]
		offset++
	}
	return nil
}

// Deserialize restores the driver state written by Serialize.
func (e *PSGEmulator) Deserialize(buf []byte) error {
	if len(buf) < e.SerializeSize() {
		return errors.New("vgm: psg driver deserialize buffer too small")
	}
	offset := 0
	for i, chip := range e.chips {
		if err := chip.Deserialize(buf[offset:]); err != nil {
			return err
		}
		offset += psgSerializeSize
		e.ggStereo[i] = buf[offset]
		offset++
	}
	return nil
}

// SerializeSize returns the total size in bytes of a player save
// state, including every installed emulator's state.
func (p *Player) SerializeSize() (int, error) {
	size := stateHeaderSize + playerSerializeSize
	for _, e := range p.emulators {
		ss, ok := e.(StateSerializer)
		if !ok {
			return 0, errors.New("vgm: installed emulator does not support save states")
		}
		size += ss.SerializeSize()
	}
	return size, nil
}

// Serialize creates a save state of the playback position and every
// installed emulator. The state is bound to the music data by CRC so
// it cannot be restored against a different track.
func (p *Player) Serialize() ([]byte, error) {
	size, err := p.SerializeSize()
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], crc32.ChecksumIEEE(p.data))

	offset := stateHeaderSize
	binary.LittleEndian.PutUint32(data[offset:], uint32(p.pos))
	binary.LittleEndian.PutUint32(data[offset+4:], p.position)
	binary.LittleEndian.PutUint32(data[offset+8:], p.samplesPlayed)
	binary.LittleEndian.PutUint32(data[offset+12:], p.loopsPlayed)
	data[offset+16] = boolByte(p.endOfStream)
	offset += playerSerializeSize

	for _, e := range p.emulators {
		ss := e.(StateSerializer)
		if err := ss.Serialize(data[offset:]); err != nil {
			return nil, err
		}
		offset += ss.SerializeSize()
	}

	binary.LittleEndian.PutUint32(data[18:22], crc32.ChecksumIEEE(data[stateHeaderSize:]))
	return data, nil
}

// Deserialize restores playback from a save state. The player must
// have the same music data and the same emulators installed, in the
// same order, as when the state was created.
func (p *Player) Deserialize(data []byte) error {
	if err := p.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	p.pos = int(binary.LittleEndian.Uint32(data[offset:]))
	p.position = binary.LittleEndian.Uint32(data[offset+4:])
	p.samplesPlayed = binary.LittleEndian.Uint32(data[offset+8:])
	p.loopsPlayed = binary.LittleEndian.Uint32(data[offset+12:])
	p.endOfStream = data[offset+16] != 0
	offset += playerSerializeSize

	for _, e := range p.emulators {
		ss, ok := e.(StateSerializer)
		if !ok {
			return errors.New("vgm: installed emulator does not support save states")
		}
		if err := ss.Deserialize(data[offset:]); err != nil {
			return err
		}
		offset += ss.SerializeSize()
	}
	return nil
}

// VerifyState checks whether a save state is valid for this player
// without loading it.
func (p *Player) VerifyState(data []byte) error {
	expectedSize, err := p.SerializeSize()
	if err != nil {
		return err
	}
	if len(data) < expectedSize {
		return errors.New("vgm: save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("vgm: invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("vgm: unsupported save state version")
	}

	dataCRC := binary.LittleEndian.Uint32(data[14:18])
	if dataCRC != crc32.ChecksumIEEE(p.data) {
		return errors.New("vgm: save state is for a different track")
	}

	payloadCRC := binary.LittleEndian.Uint32(data[18:22])
	if payloadCRC != crc32.ChecksumIEEE(data[stateHeaderSize:expectedSize]) {
		return errors.New("vgm: save state data is corrupted")
	}

	return nil
}
