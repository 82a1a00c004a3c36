package decoder

import (
	"fmt"
	"strings"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// Timing ids making up the primary and secondary summary tuples
var (
	PrimaryIDs   = []string{"CL", "RCD", "RP", "RAS"}
	SecondaryIDs = []string{"RC", "RFC", "RRD", "WR", "WTR", "RTP"}
)

// Summary is the canonical timing tuple reported at the end of a run
type Summary struct {
	Primary   []register.Value
	Secondary []register.Value
}

// Reference is a published timing set of a memory module at a given clock
type Reference struct {
	Part     string
	ClockMHz int
	Summary  Summary
}

// Summarize collects the summary ids from values
func Summarize(values *Values) (Summary, error) {
	primary, err := collect(values, PrimaryIDs)
	if err != nil {
		return Summary{}, err
	}
	secondary, err := collect(values, SecondaryIDs)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Primary: primary, Secondary: secondary}, nil
}

func collect(values *Values, ids []string) ([]register.Value, error) {
	out := make([]register.Value, 0, len(ids))
	for _, id := range ids {
		v, ok := values.Get(id)
		if !ok {
			return nil, &MissingFieldError{ID: id}
		}
		out = append(out, v)
	}
	return out, nil
}

// NewSummary builds a summary from plain integers
func NewSummary(primary, secondary []int64) Summary {
	s := Summary{}
	for _, n := range primary {
		s.Primary = append(s.Primary, register.Int(n))
	}
	for _, n := range secondary {
		s.Secondary = append(s.Secondary, register.Int(n))
	}
	return s
}

// PrimaryString renders the primary tuple, e.g. "3-3-3-9"
func (s Summary) PrimaryString() string {
	return join(s.Primary)
}

// SecondaryString renders the secondary tuple, e.g. "12-26-2-3-2-8"
func (s Summary) SecondaryString() string {
	return join(s.Secondary)
}

func (s Summary) String() string {
	return fmt.Sprintf("%s (%s) / %s (%s)",
		s.PrimaryString(), strings.Join(PrimaryIDs, "-"),
		s.SecondaryString(), strings.Join(SecondaryIDs, "-"))
}

func join(vs []register.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, "-")
}
