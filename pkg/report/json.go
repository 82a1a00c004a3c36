package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mscrnt/mchtimings/pkg/decoder"
	"github.com/mscrnt/mchtimings/pkg/register"
)

type jsonReport struct {
	Title       string          `json:"title,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Host        *HostInfo       `json:"host,omitempty"`
	ClockMHz    int             `json:"clock_mhz"`
	Registers   []jsonRegister  `json:"registers"`
	Values      *decoder.Values `json:"values"`
	Derivations []string        `json:"derivations,omitempty"`
	Shadowed    []jsonShadow    `json:"shadowed,omitempty"`
	Summary     jsonSummary     `json:"summary"`
	References  []jsonReference `json:"references,omitempty"`
}

type jsonRegister struct {
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Value   string      `json:"value"`
	Origin  string      `json:"origin"`
	Fields  []jsonField `json:"fields"`
}

type jsonField struct {
	Bits        string         `json:"bits"`
	ID          string         `json:"id,omitempty"`
	Description string         `json:"description"`
	Raw         uint32         `json:"raw"`
	Value       register.Value `json:"value"`
	Range       string         `json:"range,omitempty"`
	InRange     bool           `json:"in_range"`
	Note        string         `json:"note,omitempty"`
}

type jsonShadow struct {
	ID       string         `json:"id"`
	Previous register.Value `json:"previous"`
	From     string         `json:"from"`
	By       string         `json:"by"`
}

type jsonSummary struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

type jsonReference struct {
	Part     string      `json:"part"`
	ClockMHz int         `json:"clock_mhz"`
	Summary  jsonSummary `json:"summary"`
}

// WriteJSON writes data as an indented JSON document
func WriteJSON(w io.Writer, data *Data) error {
	rep := data.Report
	out := jsonReport{
		Title:       data.Title,
		GeneratedAt: data.GeneratedAt,
		Host:        data.Host,
		ClockMHz:    data.ClockMHz,
		Values:      rep.Values,
		Summary:     toJSONSummary(rep.Summary),
	}

	for _, rr := range rep.Registers {
		jr := jsonRegister{
			Name:    rr.Register.Name,
			Address: fmt.Sprintf("0x%03X", rr.Register.Address),
			Value:   fmt.Sprintf("0x%08X", rr.Raw),
			Origin:  rr.Origin,
		}
		for _, f := range rr.Fields {
			jr.Fields = append(jr.Fields, jsonField{
				Bits:        f.Field.Bits.String(),
				ID:          f.ID,
				Description: f.Field.Description,
				Raw:         f.Raw,
				Value:       f.Value,
				Range:       f.Field.Range.String(),
				InRange:     f.InRange,
				Note:        f.Field.Note,
			})
		}
		out.Registers = append(out.Registers, jr)
	}

	for _, d := range rep.Derivations {
		out.Derivations = append(out.Derivations, d.String())
	}
	for _, s := range rep.Shadowed {
		out.Shadowed = append(out.Shadowed, jsonShadow(s))
	}
	for _, ref := range data.References {
		out.References = append(out.References, jsonReference{
			Part:     ref.Part,
			ClockMHz: ref.ClockMHz,
			Summary:  toJSONSummary(ref.Summary),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func toJSONSummary(s decoder.Summary) jsonSummary {
	return jsonSummary{Primary: s.PrimaryString(), Secondary: s.SecondaryString()}
}
