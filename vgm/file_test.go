package vgm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// buildFile assembles a complete v1.50 image: header, command stream,
// optional GD3 block.
func buildFile(commands []byte, tags [11]string, withGD3 bool) []byte {
	data := buildHeader(0x40, 0x150)
	binary.LittleEndian.PutUint32(data[0x0C:], 3579545)       // SN76489 clock
	binary.LittleEndian.PutUint32(data[0x18:], 735)           // total samples
	binary.LittleEndian.PutUint32(data[0x34:], 0x40-0x34)     // data offset
	data = append(data, commands...)

	if withGD3 {
		binary.LittleEndian.PutUint32(data[0x14:], uint32(len(data))-0x14)
		data = append(data, buildGD3(tags)...)
	}
	binary.LittleEndian.PutUint32(data[0x04:], uint32(len(data))-0x04)
	return data
}

func TestParse_PlainVGM(t *testing.T) {
	commands := []byte{0x62, 0x66}
	image := buildFile(commands, [11]string{"Title"}, true)

	f, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.Header.PSG.Clock != 3579545 {
		t.Errorf("PSG clock: expected 3579545, got %d", f.Header.PSG.Clock)
	}
	if !bytes.Equal(f.MusicData(), commands) {
		t.Errorf("Music data: expected % X, got % X", commands, f.MusicData())
	}
	if f.Tags == nil {
		t.Fatal("Expected GD3 tags")
	}
	if f.Tags.Title != "Title" {
		t.Errorf("Title: expected %q, got %q", "Title", f.Tags.Title)
	}
}

func TestParse_NoGD3(t *testing.T) {
	image := buildFile([]byte{0x66}, [11]string{}, false)

	f, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Tags != nil {
		t.Error("Expected no tags")
	}
	if !bytes.Equal(f.MusicData(), []byte{0x66}) {
		t.Errorf("Music data: got % X", f.MusicData())
	}
}

// TestParse_VGZ: gzip-compressed input decompresses transparently
func TestParse_VGZ(t *testing.T) {
	image := buildFile([]byte{0x62, 0x66}, [11]string{"Compressed"}, true)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(image); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	f, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Tags == nil || f.Tags.Title != "Compressed" {
		t.Errorf("Tags after decompression: %+v", f.Tags)
	}
	if !bytes.Equal(f.MusicData(), []byte{0x62, 0x66}) {
		t.Errorf("Music data after decompression: got % X", f.MusicData())
	}
}

// TestFile_NewPlayer: the convenience constructor plays the file's
// command stream end to end
func TestFile_NewPlayer(t *testing.T) {
	image := buildFile([]byte{0x62, 0x66}, [11]string{}, false)

	f, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	p := f.NewPlayer()
	if _, err := NewPSGEmulator(f.Header.PSG); err != nil {
		t.Fatalf("NewPSGEmulator: %v", err)
	}

	callbacks := 0
	p.SetSampleFunc(func(*Player) { callbacks++ })
	for !p.EndOfStream() {
		if err := p.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if callbacks != 735 {
		t.Errorf("Expected 735 callbacks, got %d", callbacks)
	}
}

func TestParse_BadImage(t *testing.T) {
	if _, err := Parse([]byte("not a vgm")); err == nil {
		t.Error("Expected error for junk input")
	}
}
