package song

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/QEStudios/unimod/unitrk"
)

// Minimum column width, for nicer output.
const minCellWidth = 10

// CellString renders one decoded row of a track the way a tracker shows it, e.g. "C-4 01 A0F".
func CellString(events []unitrk.Event) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		switch {
		case e.Op == unitrk.OpNote:
			parts = append(parts, NoteName(e.Args[0]))
		case e.Op == unitrk.OpInstrument:
			parts = append(parts, fmt.Sprintf("%02d", int(e.Args[0])+1))
		case e.Op >= unitrk.OpPTEffect0 && e.Op <= unitrk.OpPTEffectF:
			parts = append(parts, fmt.Sprintf("%X%02X", int(e.Op-unitrk.OpPTEffect0), e.Args[0]))
		case e.Op == unitrk.OpKeyOff:
			parts = append(parts, "===")
		case e.Op == unitrk.OpVolEffects:
			parts = append(parts, fmt.Sprintf("v%d:%02X", e.Args[0], e.Args[1]))
		default:
			parts = append(parts, e.String())
		}
	}
	return strings.Join(parts, " ")
}

// formatTable formats cells into a bordered table.
// headers: one name per column.
// rows: one slice of cells per row. Missing cells print empty.
// indent: number of spaces to indent the table.
func formatTable(headers []string, rows [][]string, indent int) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(len(h), minCellWidth)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}

	var b strings.Builder
	separator := func() {
		b.WriteString(strings.Repeat(" ", indent))
		for _, w := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", w+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}
	line := func(cells []string) {
		b.WriteString(strings.Repeat(" ", indent))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString("| ")
			b.WriteString(padRight(cell, w))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	separator()
	line(headers)
	separator()
	for _, row := range rows {
		line(row)
	}
	separator()

	return b.String()
}

// PatternTable renders pattern pat as a table with one column per channel.
func (s *Song) PatternTable(pat int, indent int) string {
	numRows := s.Rows(pat)
	headers := make([]string, s.NumChannels+1)
	headers[0] = "Row"
	for ch := range s.NumChannels {
		headers[ch+1] = fmt.Sprintf("Channel %d", ch)
	}

	rows := make([][]string, numRows)
	for r := range rows {
		rows[r] = make([]string, s.NumChannels+1)
		rows[r][0] = fmt.Sprintf("%02X", r)
	}
	for ch := range s.NumChannels {
		decoded := unitrk.Decode(s.Track(pat, ch))
		for r := 0; r < numRows && r < len(decoded); r++ {
			rows[r][ch+1] = CellString(decoded[r])
		}
	}
	return formatTable(headers, rows, indent)
}

// Pretty-print the song header, samples and instruments.
func (s *Song) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s module:\n", s.ModType)
	fmt.Fprintf(&b, "- Name: %s\n", s.Name)
	fmt.Fprintf(&b, "- Channels: %d\n", s.NumChannels)
	if s.NumVoices > 0 {
		fmt.Fprintf(&b, "- Voices: %d\n", s.NumVoices)
	}
	fmt.Fprintf(&b, "- Periods: %s\n", s.PeriodModel())
	fmt.Fprintf(&b, "- Initial speed: %d, tempo: %d, volume: %d\n", s.InitSpeed, s.InitTempo, s.InitVolume)
	fmt.Fprintf(&b, "- Positions (%d):", len(s.Positions))
	for i, p := range s.Positions {
		if i == int(s.RepeatPos) && s.RepeatPos != 0 {
			b.WriteString(" |")
		}
		fmt.Fprintf(&b, " %d", p)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Patterns: %d, tracks: %d\n", s.NumPatterns(), len(s.Tracks))

	if len(s.Samples) > 0 {
		b.WriteString("- Samples:\n")
		for i, smp := range s.Samples {
			if smp.Length == 0 && smp.Name == "" {
				continue
			}
			fmt.Fprintf(&b, "  - #%d %q: length %d, volume %d, speed %d", i+1, smp.Name, smp.Length, smp.Volume, smp.Speed)
			if smp.Loops() {
				fmt.Fprintf(&b, ", loop %d-%d", smp.LoopStart, smp.LoopEnd)
				if smp.Flags&SampleBidi != 0 {
					b.WriteString(" (bidi)")
				}
			}
			if smp.Flags&Sample16Bits != 0 {
				b.WriteString(", 16 bit")
			}
			b.WriteString("\n")
		}
	}

	if s.Flags&FlagInstruments != 0 {
		b.WriteString("- Instruments:\n")
		for i, ins := range s.Instruments {
			fmt.Fprintf(&b, "  - #%d %q: nna %s, fade %d", i+1, ins.Name, ins.NNA, ins.VolFade)
			if ins.VolEnv.On() {
				fmt.Fprintf(&b, ", volume envelope (%d points)", ins.VolEnv.NumPoints)
			}
			if ins.PanEnv.On() {
				fmt.Fprintf(&b, ", panning envelope (%d points)", ins.PanEnv.NumPoints)
			}
			b.WriteString("\n")
		}
	}

	if s.Comment != "" {
		fmt.Fprintf(&b, "- Comment: %s\n", s.Comment)
	}
	return b.String()
}

// WritePatterns writes every pattern table to w.
func (s *Song) WritePatterns(w io.Writer) error {
	for pat := range s.NumPatterns() {
		if _, err := fmt.Fprintf(w, "\n  - Pattern #%d (%d rows):\n", pat, s.Rows(pat)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, s.PatternTable(pat, 4)); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes the full song structure to w, for debugging.
func (s *Song) Dump(w io.Writer) {
	spew.Fdump(w, s)
}
