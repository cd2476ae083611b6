// Package hud formats the battery, mode and stamina readouts the simulation
// pushes every tick.
package hud

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/flashlight"
)

// Sink receives readouts. It is push-only; the simulation never reads back.
type Sink interface {
	UpdateBattery(percent float64)
	UpdateMode(mode flashlight.Mode)
	UpdateStamina(percent float64)
	UpdateHealth(percent float64)
}

var (
	red    = colorful.Color{R: 1, G: 0, B: 0}
	yellow = colorful.Color{R: 1, G: 1, B: 0}
	green  = colorful.Color{R: 0, G: 1, B: 0}
)

// BatteryColor blends red at empty, yellow at half and green at full in HSV.
func BatteryColor(percent float64) colorful.Color {
	p := common.Clamp(percent, 0, 1)
	if p > 0.5 {
		return yellow.BlendHsv(green, (p-0.5)*2).Clamped()
	}
	return red.BlendHsv(yellow, p*2).Clamped()
}

func BatteryText(percent float64) string {
	return fmt.Sprintf("Battery: %.0f%%", percent*100)
}

func ModeText(mode flashlight.Mode) string {
	return "Mode: " + mode.Label()
}

func StaminaText(percent float64) string {
	return fmt.Sprintf("Stamina: %.0f%%", percent*100)
}

func HealthText(percent float64) string {
	return fmt.Sprintf("Health: %.0f%%", percent*100)
}

// Model keeps the latest readouts for a renderer to draw.
type Model struct {
	Battery float64
	Mode    flashlight.Mode
	Stamina float64
	Health  float64
	Updates int
}

func (m *Model) UpdateBattery(percent float64) {
	m.Battery = percent
	m.Updates++
}

func (m *Model) UpdateMode(mode flashlight.Mode) { m.Mode = mode }

func (m *Model) UpdateStamina(percent float64) { m.Stamina = percent }

func (m *Model) UpdateHealth(percent float64) { m.Health = percent }

// Lines returns the readouts in display order.
func (m *Model) Lines() []string {
	return []string{
		BatteryText(m.Battery),
		ModeText(m.Mode),
		StaminaText(m.Stamina),
		HealthText(m.Health),
	}
}

// RGBA converts c to an 8-bit colour for renderers that want image/color.
func RGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
