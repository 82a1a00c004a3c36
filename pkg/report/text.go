package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mscrnt/mchtimings/pkg/decoder"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"

	separator = "-------------------------------------------------------------------------------------"
)

// WriteText writes one of the text layouts: plain is the full field table,
// simple lists id, value and description, verbose adds notes, value origins,
// derivations and the host.
func WriteText(w io.Writer, data *Data, layout Format, color bool) error {
	switch layout {
	case FormatPlain, FormatSimple, FormatVerbose:
	default:
		return fmt.Errorf("%q is not a text format", layout)
	}

	bw := bufio.NewWriter(w)
	t := &textWriter{w: bw, layout: layout, color: color}

	if data.Title != "" {
		fmt.Fprintf(bw, "%s\n\n", data.Title)
	}
	if layout == FormatVerbose && data.Host != nil {
		fmt.Fprintf(bw, "Host: %s\n\n", data.Host)
	}

	for _, rr := range data.Report.Registers {
		t.register(rr)
		fmt.Fprintln(bw)
	}

	if layout == FormatVerbose {
		t.derived(data.Report)
	}

	fmt.Fprintln(bw, separator)
	fmt.Fprintf(bw, "@ %d MHz\t%s \n\n", data.ClockMHz, summaryLine(data.Report.Summary))

	if len(data.References) > 0 {
		fmt.Fprintln(bw, "SPD Memory Timings")
		part := ""
		for _, ref := range data.References {
			if ref.Part != part {
				part = ref.Part
				fmt.Fprintln(bw, part)
			}
			fmt.Fprintf(bw, "@ %d MHz\t%s\n", ref.ClockMHz, summaryLine(ref.Summary))
		}
	}

	return bw.Flush()
}

type textWriter struct {
	w      *bufio.Writer
	layout Format
	color  bool
}

func (t *textWriter) register(rr decoder.RegisterReport) {
	fmt.Fprintf(t.w, "=== %s === Address: 0x%03X Value: 0x%08X %s",
		rr.Register.Name, rr.Register.Address, rr.Raw, decoder.Nibbles(rr.Raw))
	if t.layout == FormatVerbose {
		fmt.Fprintf(t.w, " (%s)", rr.Origin)
	}
	fmt.Fprint(t.w, "\n\n")

	for _, f := range rr.Fields {
		t.field(f)
	}
}

func (t *textWriter) field(f decoder.DecodedField) {
	id := ""
	if f.ID != "" {
		id = f.ID + " "
	}

	if t.layout == FormatSimple {
		fmt.Fprintf(t.w, "  %-5s %s %s\n", id, t.highlight(fmt.Sprintf("%-4s", f.Value), f.InRange), f.Field.Description)
		return
	}

	value := f.Value.String()
	if f.Field.Transform != nil {
		value = fmt.Sprintf("%d)  %s", f.Raw, f.Value)
	}

	fmt.Fprintf(t.w, "  Bits %-7s %-5s %-47s %s | 0x%02X | %-6b %s\n",
		f.Field.Bits, id, f.Field.Description,
		t.highlight(fmt.Sprintf("%10s", value), f.InRange),
		f.Raw, f.Raw, f.Field.Range)

	if t.layout == FormatVerbose && f.Field.Note != "" {
		fmt.Fprintf(t.w, "  %-13s %-5s %s\n", "", "", "note: "+f.Field.Note)
	}
}

func (t *textWriter) derived(rep *decoder.Report) {
	if len(rep.Derivations) > 0 {
		fmt.Fprintln(t.w, "Derived:")
		for _, d := range rep.Derivations {
			v, _ := rep.Values.Get(d.Name)
			fmt.Fprintf(t.w, "  %-20s => %s\n", d, v)
		}
		fmt.Fprintln(t.w)
	}

	if len(rep.Shadowed) > 0 {
		fmt.Fprintln(t.w, "Overwritten:")
		for _, s := range rep.Shadowed {
			fmt.Fprintf(t.w, "  %-5s %s from %s replaced by %s\n", s.ID, s.Previous, s.From, s.By)
		}
		fmt.Fprintln(t.w)
	}
}

func (t *textWriter) highlight(s string, inRange bool) string {
	if !t.color || inRange {
		return s
	}
	return ansiRed + s + ansiReset
}

// summaryLine renders a summary the way the timing table has always been
// printed, e.g. "3-3-3-9   (CL-RCD-RP-RAS) / 12-26-2-3-2-8  (RC-RFC-RRD-WR-WTR-RTP)"
func summaryLine(s decoder.Summary) string {
	if len(s.Primary) != len(decoder.PrimaryIDs) || len(s.Secondary) != len(decoder.SecondaryIDs) {
		return s.String()
	}

	p, q := s.Primary, s.Secondary
	return fmt.Sprintf("%s-%s-%s-%-2s  (%s) / %-2s-%s-%s-%s-%s-%s  (%s)",
		p[0], p[1], p[2], p[3], strings.Join(decoder.PrimaryIDs, "-"),
		q[0], q[1], q[2], q[3], q[4], q[5], strings.Join(decoder.SecondaryIDs, "-"))
}
