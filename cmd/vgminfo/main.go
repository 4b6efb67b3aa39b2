package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/user-none/govgm/vgm"
)

type styles struct {
	label lipgloss.Style
	value lipgloss.Style
	chip  lipgloss.Style
}

func newStyles(plain bool) styles {
	if plain {
		s := lipgloss.NewStyle()
		return styles{label: s, value: s, chip: s}
	}
	return styles{
		label: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		value: lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(7)),
		chip:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
	}
}

func main() {
	plain := flag.Bool("plain", false, "disable styled output")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Usage: vgminfo [flags] <file.vgm|file.vgz>")
	}

	f, err := vgm.LoadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load VGM: %v", err)
	}

	st := newStyles(*plain)
	h := f.Header

	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Printf("%s %s\n", st.label.Render(label+":"), st.value.Render(value))
	}

	row("Format", "VGM "+h.VersionString())
	row("Duration", h.Duration().Round(10*time.Millisecond).String())
	if h.HasLoop() {
		row("Loop", h.LoopDuration().Round(10*time.Millisecond).String())
	}
	if h.Rate != 0 {
		row("Rate", fmt.Sprintf("%d Hz", h.Rate))
	}

	if h.PSG.Clock != 0 {
		chip := fmt.Sprintf("SN76489 @ %d Hz (lfsr %d-bit, taps 0x%04X)",
			h.PSG.Clock, h.PSG.SRWidth, h.PSG.Feedback)
		if h.PSG.DualChip {
			chip += " x2"
		}
		fmt.Printf("%s %s\n", st.label.Render("Chip:"), st.chip.Render(chip))
	}
	for _, c := range []struct {
		name  string
		clock uint32
	}{
		{"YM2413", h.YM2413Clock},
		{"YM2612", h.YM2612Clock},
		{"YM2151", h.YM2151Clock},
	} {
		if c.clock != 0 {
			fmt.Printf("%s %s\n", st.label.Render("Chip:"),
				st.chip.Render(fmt.Sprintf("%s @ %d Hz (not rendered)", c.name, c.clock)))
		}
	}

	if f.Tags != nil {
		fmt.Println()
		row("Title", f.Tags.Title)
		row("Game", f.Tags.Game)
		row("System", f.Tags.System)
		row("Composer", f.Tags.Author)
		row("Date", f.Tags.Date)
		row("Encoded by", f.Tags.EncodedBy)
		row("Notes", f.Tags.Notes)
	}
}
