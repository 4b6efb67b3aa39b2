package vgm

import (
	"encoding/binary"
	"testing"
)

// utf16le encodes a string as UTF-16LE with a NUL terminator.
func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2+2)
	for _, r := range s {
		out = binary.LittleEndian.AppendUint16(out, uint16(r))
	}
	return binary.LittleEndian.AppendUint16(out, 0)
}

// buildGD3 assembles a tag block from the eleven ordered strings.
func buildGD3(fields [11]string) []byte {
	var payload []byte
	for _, f := range fields {
		payload = append(payload, utf16le(f)...)
	}

	block := make([]byte, 0, 12+len(payload))
	block = append(block, "Gd3 "...)
	block = binary.LittleEndian.AppendUint32(block, 0x100)
	block = binary.LittleEndian.AppendUint32(block, uint32(len(payload)))
	return append(block, payload...)
}

func TestParseGD3(t *testing.T) {
	fields := [11]string{
		"Green Hill Zone",
		"",
		"Sonic The Hedgehog",
		"",
		"Sega Master System",
		"",
		"Masato Nakamura",
		"",
		"1991/10/25",
		"someone",
		"ripped from hardware",
	}

	tags, err := ParseGD3(buildGD3(fields))
	if err != nil {
		t.Fatalf("ParseGD3: %v", err)
	}

	if tags.Version != 0x100 {
		t.Errorf("Version: expected 0x100, got 0x%X", tags.Version)
	}
	if tags.Title != fields[0] {
		t.Errorf("Title: expected %q, got %q", fields[0], tags.Title)
	}
	if tags.TitleJP != "" {
		t.Errorf("TitleJP: expected empty, got %q", tags.TitleJP)
	}
	if tags.Game != fields[2] {
		t.Errorf("Game: expected %q, got %q", fields[2], tags.Game)
	}
	if tags.System != fields[4] {
		t.Errorf("System: expected %q, got %q", fields[4], tags.System)
	}
	if tags.Author != fields[6] {
		t.Errorf("Author: expected %q, got %q", fields[6], tags.Author)
	}
	if tags.Date != fields[8] {
		t.Errorf("Date: expected %q, got %q", fields[8], tags.Date)
	}
	if tags.EncodedBy != fields[9] {
		t.Errorf("EncodedBy: expected %q, got %q", fields[9], tags.EncodedBy)
	}
	if tags.Notes != fields[10] {
		t.Errorf("Notes: expected %q, got %q", fields[10], tags.Notes)
	}
}

// TestParseGD3_NonASCII exercises the UTF-16 decode beyond the ASCII
// range
func TestParseGD3_NonASCII(t *testing.T) {
	fields := [11]string{"", "ソニック"}
	tags, err := ParseGD3(buildGD3(fields))
	if err != nil {
		t.Fatalf("ParseGD3: %v", err)
	}
	if tags.TitleJP != "ソニック" {
		t.Errorf("TitleJP: expected %q, got %q", "ソニック", tags.TitleJP)
	}
}

// TestParseGD3_Truncated: fewer than eleven strings decodes what is
// present
func TestParseGD3_Truncated(t *testing.T) {
	var payload []byte
	payload = append(payload, utf16le("Title")...)
	payload = append(payload, utf16le("")...)

	block := append([]byte("Gd3 "), 0, 1, 0, 0)
	block = binary.LittleEndian.AppendUint32(block, uint32(len(payload)))
	block = append(block, payload...)

	tags, err := ParseGD3(block)
	if err != nil {
		t.Fatalf("ParseGD3: %v", err)
	}
	if tags.Title != "Title" {
		t.Errorf("Title: expected %q, got %q", "Title", tags.Title)
	}
	if tags.Notes != "" {
		t.Errorf("Notes: expected empty, got %q", tags.Notes)
	}
}

func TestParseGD3_BadMagic(t *testing.T) {
	block := buildGD3([11]string{})
	copy(block[0:4], "GD3 ")
	if _, err := ParseGD3(block); err == nil {
		t.Error("Expected error for bad identifier")
	}
}

func TestParseGD3_TooShort(t *testing.T) {
	if _, err := ParseGD3([]byte("Gd3 ")); err == nil {
		t.Error("Expected error for short block")
	}
}

func TestParseGD3_LengthOverrun(t *testing.T) {
	block := buildGD3([11]string{})
	binary.LittleEndian.PutUint32(block[8:12], 0x10000)
	if _, err := ParseGD3(block); err == nil {
		t.Error("Expected error for overlong declared length")
	}
}
