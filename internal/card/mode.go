package card

import "fmt"

// Mode selects the card layout. The set is closed; every switch over Mode
// must handle all five values.
type Mode int

const (
	Square Mode = iota
	Pendant
	RectangleText
	PendantText
	RectangleText2x
)

var modeNames = [...]string{
	Square:          "square",
	Pendant:         "pendant",
	RectangleText:   "rectangle-text",
	PendantText:     "pendant-text",
	RectangleText2x: "rectangle-text-2x",
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{Square, Pendant, RectangleText, PendantText, RectangleText2x}
}

// ParseMode maps a mode name to its Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

func (m Mode) Valid() bool {
	return m >= Square && m <= RectangleText2x
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// HasHole reports whether the card is drilled for a chain.
func (m Mode) HasHole() bool {
	return m == Pendant || m == PendantText
}

// HasBottomText reports whether the mode renders a label below the QR code.
func (m Mode) HasBottomText() bool {
	return m == RectangleText || m == PendantText || m == RectangleText2x
}

// HasTopText reports whether the mode renders a label above the QR code.
func (m Mode) HasTopText() bool {
	return m == RectangleText2x
}

// DefaultRotation is the text rotation used when the caller does not pick one.
func DefaultRotation(m Mode) int {
	if m == PendantText || m == RectangleText2x {
		return 180
	}
	return 0
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMode, int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
