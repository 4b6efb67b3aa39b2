package main

import (
	"encoding/binary"
	"flag"
	"log"
	"math"
	"os"

	"github.com/user-none/govgm/vgm"
)

const (
	sampleRate = 44100

	// First-order RC low-pass matching the SMS output stage
	// (fc ~= 2840 Hz, 20 dB/decade rolloff).
	lpfCutoffHz = 2840.0
)

var lpfAlpha = 1.0 / (float64(sampleRate)/(2*math.Pi*lpfCutoffHz) + 1)

func main() {
	outPath := flag.String("o", "out.wav", "output WAV path")
	loops := flag.Uint("loops", 2, "number of passes over the loop region for looped tracks")
	fade := flag.Float64("fade", 0, "fade-out length in seconds applied to the tail")
	lowpass := flag.Bool("lowpass", false, "apply the console output low-pass filter")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Usage: vgmexport [flags] <file.vgm|file.vgz>")
	}

	f, err := vgm.LoadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load VGM: %v", err)
	}

	player := f.NewPlayer()
	psg, err := vgm.NewPSGEmulator(f.Header.PSG)
	if err != nil {
		log.Fatalf("Failed to create PSG: %v", err)
	}
	if err := player.Install(psg); err != nil {
		log.Fatalf("Failed to install PSG: %v", err)
	}

	var left, right []float32
	player.SetSampleFunc(func(p *vgm.Player) {
		left = append(left, p.LeftOutput())
		right = append(right, p.RightOutput())
	})

	for !player.EndOfStream() && player.LoopsPlayed() < uint32(*loops) {
		if err := player.Next(); err != nil {
			log.Fatalf("Playback failed at %v: %v", player.Timestamp(), err)
		}
	}

	if *lowpass {
		applyLowPass(left)
		applyLowPass(right)
	}
	if *fade > 0 {
		applyFade(left, *fade)
		applyFade(right, *fade)
	}

	if err := writeWAV(*outPath, left, right); err != nil {
		log.Fatalf("Failed to write WAV: %v", err)
	}
	log.Printf("Wrote %d samples (%v) to %s", len(left), player.Timestamp(), *outPath)
}

// applyLowPass runs a first-order RC filter over one channel in place.
func applyLowPass(buf []float32) {
	var prev float64
	for i, v := range buf {
		prev = lpfAlpha*float64(v) + (1-lpfAlpha)*prev
		buf[i] = float32(prev)
	}
}

// applyFade scales the last seconds of the buffer linearly to silence.
func applyFade(buf []float32, seconds float64) {
	n := int(seconds * sampleRate)
	if n > len(buf) {
		n = len(buf)
	}
	start := len(buf) - n
	for i := 0; i < n; i++ {
		buf[start+i] *= float32(n-i) / float32(n)
	}
}

// writeWAV stores the two channels as 16-bit stereo PCM.
func writeWAV(path string, left, right []float32) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	dataSize := uint32(len(left) * 4) // 2 channels x 2 bytes
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 2) // stereo
	binary.LittleEndian.PutUint32(header[24:28], sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], sampleRate*4)
	binary.LittleEndian.PutUint16(header[32:34], 4)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)
	if _, err := out.Write(header); err != nil {
		return err
	}

	pcm := make([]byte, len(left)*4)
	for i := range left {
		binary.LittleEndian.PutUint16(pcm[i*4:], uint16(pcm16(left[i])))
		binary.LittleEndian.PutUint16(pcm[i*4+2:], uint16(pcm16(right[i])))
	}
	_, err = out.Write(pcm)
	return err
}

// pcm16 converts a [-1, 1] float sample to a clamped 16-bit value.
func pcm16(v float32) int16 {
	s := v * 32767
	if s > 32767 {
		s = 32767
	}
	if s < -32768 {
		s = -32768
	}
	return int16(s)
}
