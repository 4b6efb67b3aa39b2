package vgm

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// GD3 is the decoded metadata tag block. Strings come in English and
// Japanese variants; either may be empty.
type GD3 struct {
	Version uint32

	Title     string
	TitleJP   string
	Game      string
	GameJP    string
	System    string
	SystemJP  string
	Author    string
	AuthorJP  string
	Date      string
	EncodedBy string
	Notes     string
}

// ParseGD3 decodes a GD3 block starting at its "Gd3 " identifier.
func ParseGD3(data []byte) (*GD3, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("vgm: gd3 block too short (%d bytes)", len(data))
	}
	if string(data[0:4]) != "Gd3 " {
		return nil, fmt.Errorf("vgm: bad gd3 identifier %q", data[0:4])
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	length := binary.LittleEndian.Uint32(data[8:12])
	if int(length) > len(data)-12 {
		return nil, fmt.Errorf("vgm: gd3 length %d exceeds block", length)
	}

	fields, err := splitGD3Strings(data[12:12+length], 11)
	if err != nil {
		return nil, err
	}

	return &GD3{
		Version:   version,
		Title:     fields[0],
		TitleJP:   fields[1],
		Game:      fields[2],
		GameJP:    fields[3],
		System:    fields[4],
		SystemJP:  fields[5],
		Author:    fields[6],
		AuthorJP:  fields[7],
		Date:      fields[8],
		EncodedBy: fields[9],
		Notes:     fields[10],
	}, nil
}

// splitGD3Strings cuts n UTF-16LE NUL-terminated strings out of raw and
// decodes them. Truncated tags yield the strings present and empty
// remainders; tag writers in the wild routinely short the list.
func splitGD3Strings(raw []byte, n int) ([]string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

	out := make([]string, n)
	start := 0
	for i := 0; i < n; i++ {
		end := start
		for end+1 < len(raw) && !(raw[end] == 0 && raw[end+1] == 0) {
			end += 2
		}
		if start >= len(raw) {
			break
		}
		decoded, err := dec.Bytes(raw[start:end])
		if err != nil {
			return nil, fmt.Errorf("vgm: gd3 string %d: %v", i, err)
		}
		out[i] = string(decoded)
		start = end + 2
	}
	return out, nil
}
