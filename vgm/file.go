package vgm

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// File is a fully loaded VGM container: decoded header, optional GD3
// tags and the uncompressed file image.
type File struct {
	Header *Header
	Tags   *GD3 // nil when the file carries no GD3 block

	data []byte
}

// LoadFile reads and parses a .vgm or gzip-compressed .vgz file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a VGM image, transparently decompressing VGZ input.
func Parse(data []byte) (*File, error) {
	if len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, err
		}
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	f := &File{Header: h, data: data}

	if h.GD3Offset != 0 && int(h.GD3Offset) < len(data) {
		tags, err := ParseGD3(data[h.GD3Offset:])
		if err != nil {
			return nil, err
		}
		f.Tags = tags
	}

	return f, nil
}

// MusicData returns the command-stream region: from the data offset up
// to the GD3 block or the declared end of file, whichever comes first.
func (f *File) MusicData() []byte {
	end := len(f.data)
	if f.Header.EOFOffset != 0 && int(f.Header.EOFOffset) < end {
		end = int(f.Header.EOFOffset)
	}
	if f.Header.GD3Offset != 0 && int(f.Header.GD3Offset) < end &&
		f.Header.GD3Offset > f.Header.DataOffset {
		end = int(f.Header.GD3Offset)
	}
	return f.data[f.Header.DataOffset:end]
}

// NewPlayer builds a dispatcher positioned at the file's first command.
// Emulators still need to be installed by the caller.
func (f *File) NewPlayer() *Player {
	return NewPlayer(f.Header, f.MusicData())
}
