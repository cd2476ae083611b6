package flashlight

import (
	"fmt"
	"strings"
)

type Mode int

const (
	Off Mode = iota
	Low
	Medium
	High
	Strobe
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Strobe:
		return "strobe"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Label is the short upper-case name shown on the HUD.
func (m Mode) Label() string {
	switch m {
	case Low:
		return "LOW"
	case Medium:
		return "MED"
	case High:
		return "HIGH"
	case Strobe:
		return "STROBE"
	default:
		return "OFF"
	}
}

// Next returns the following mode in the Low, Medium, High, Strobe cycle.
func (m Mode) Next() Mode {
	switch m {
	case Low:
		return Medium
	case Medium:
		return High
	case High:
		return Strobe
	default:
		return Low
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return Off, nil
	case "low":
		return Low, nil
	case "medium", "med":
		return Medium, nil
	case "high":
		return High, nil
	case "strobe":
		return Strobe, nil
	}
	return Off, fmt.Errorf("flashlight: unknown mode %q", s)
}
