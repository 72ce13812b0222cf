package geodata

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Frame identifies a coordinate reference frame. A frame is either an EPSG
// code or a PROJ parameter string; two collections are comparable for spatial
// operations only when their frames are equal. The zero Frame is unknown and
// is never comparable to anything, itself included.
type Frame struct {
	epsg   int
	params string
}

// EPSGFrame returns the frame for a numeric EPSG code.
func EPSGFrame(code int) Frame {
	return Frame{epsg: code}
}

// ProjFrame returns a frame defined by a PROJ parameter string. The string is
// normalized (sorted parameters, collapsed whitespace) so that equal frames
// written in different parameter orders compare equal.
func ProjFrame(params string) Frame {
	return Frame{params: normalizeProj(params)}
}

// ParseFrame constructs a Frame from a specification string: "EPSG:4326", a
// bare numeric code "4326", or a PROJ parameter string starting with "+".
func ParseFrame(s string) (Frame, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Frame{}, eris.New("geodata: empty frame specification")
	case strings.HasPrefix(s, "+"):
		return ProjFrame(s), nil
	case strings.HasPrefix(strings.ToUpper(s), "EPSG:"):
		code, err := strconv.Atoi(s[len("EPSG:"):])
		if err != nil {
			return Frame{}, eris.Wrapf(err, "geodata: parse frame %q", s)
		}
		return EPSGFrame(code), nil
	default:
		code, err := strconv.Atoi(s)
		if err != nil {
			return Frame{}, eris.Errorf("geodata: unrecognized frame specification %q", s)
		}
		return EPSGFrame(code), nil
	}
}

// IsKnown reports whether the frame carries any definition.
func (f Frame) IsKnown() bool { return f.epsg != 0 || f.params != "" }

// EPSG returns the EPSG code, or 0 if the frame is PROJ-defined or unknown.
func (f Frame) EPSG() int { return f.epsg }

// Equal reports whether two frames are the same known frame. Unknown frames
// never compare equal, by design: computing on geometries whose frame is not
// known is the misuse this type exists to prevent.
func (f Frame) Equal(other Frame) bool {
	if !f.IsKnown() || !other.IsKnown() {
		return false
	}
	return f.epsg == other.epsg && f.params == other.params
}

// String renders the frame specification.
func (f Frame) String() string {
	switch {
	case f.epsg != 0:
		return fmt.Sprintf("EPSG:%d", f.epsg)
	case f.params != "":
		return f.params
	default:
		return "unknown"
	}
}

func normalizeProj(params string) string {
	fields := strings.Fields(params)
	slices.Sort(fields)
	return strings.Join(fields, " ")
}

// CheckFrames returns nil when the two frames are equal and a wrapped
// ErrFrameMismatch naming both frames otherwise. Shared by the join and zonal
// packages.
func CheckFrames(a, b Frame) error {
	if a.Equal(b) {
		return nil
	}
	return eris.Wrapf(ErrFrameMismatch, "%s vs %s", a, b)
}
