package main

import (
	"math"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/hud"
	"github.com/milk9111/nightwatch/sim"
)

const hudRows = 3

// viewport maps the arena onto the terminal grid above the HUD.
type viewport struct {
	cols, rows    int
	width, height float64
}

func (v viewport) ok() bool {
	return v.cols > 0 && v.rows > 0 && v.width > 0 && v.height > 0
}

func (v viewport) cell(p common.Vec2) (int, int, bool) {
	if !v.ok() {
		return 0, 0, false
	}
	x := int(math.Floor(p.X / v.width * float64(v.cols)))
	y := int(math.Floor(p.Y / v.height * float64(v.rows)))
	if x < 0 || y < 0 || x >= v.cols || y >= v.rows {
		return 0, 0, false
	}
	return x, y, true
}

// world returns the arena point at the centre of a cell.
func (v viewport) world(x, y int) common.Vec2 {
	return common.V(
		(float64(x)+0.5)*v.width/float64(v.cols),
		(float64(y)+0.5)*v.height/float64(v.rows),
	)
}

func inWalls(p common.Vec2, walls []common.Rect) bool {
	for _, r := range walls {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// glyph is the rune for an enemy: the type's initial, lower case while idle.
func glyph(e sim.EnemyView) rune {
	r := 'E'
	if e.Type != "" {
		r = []rune(e.Type)[0]
	}
	switch e.State {
	case enemy.Dead:
		return 'x'
	case enemy.Idle:
		return unicode.ToLower(r)
	}
	return unicode.ToUpper(r)
}

func rgb(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

var (
	wallStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	innerStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	outerStyle = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	textStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

func draw(screen tcell.Screen, s *sim.Simulation, vp viewport, model *hud.Model, log []string, paused bool) {
	screen.Clear()
	walls := s.Walls()
	player, hasPlayer := s.Player()

	for y := 0; y < vp.rows; y++ {
		for x := 0; x < vp.cols; x++ {
			p := vp.world(x, y)
			if inWalls(p, walls) {
				screen.SetContent(x, y, '█', nil, wallStyle)
				continue
			}
			if !hasPlayer {
				continue
			}
			lit, inner := player.Lights(p)
			if !lit || !s.LineOfSight(player.Position, p) {
				continue
			}
			if inner {
				screen.SetContent(x, y, '·', nil, innerStyle)
			} else {
				screen.SetContent(x, y, '.', nil, outerStyle)
			}
		}
	}

	for _, e := range s.Enemies() {
		x, y, ok := vp.cell(e.Position)
		if !ok {
			continue
		}
		style := tcell.StyleDefault.Foreground(rgb(e.Color))
		switch e.State {
		case enemy.Stunned:
			style = style.Reverse(true)
		case enemy.Dead:
			style = style.Dim(true)
		case enemy.Chasing, enemy.Attacking:
			style = style.Bold(true)
		}
		screen.SetContent(x, y, glyph(e), nil, style)
	}

	if hasPlayer {
		if x, y, ok := vp.cell(player.Position); ok {
			style := tcell.StyleDefault.Foreground(rgb(player.Color)).Bold(true)
			if player.Dead {
				style = style.Dim(true)
			}
			screen.SetContent(x, y, '@', nil, style)
		}
	}

	drawHUD(screen, vp, model, log, paused)
	screen.Show()
}

func drawHUD(screen tcell.Screen, vp viewport, model *hud.Model, log []string, paused bool) {
	y := vp.rows
	x := drawText(screen, 0, y, hud.BatteryText(model.Battery)+" ", tcell.StyleDefault.Foreground(rgb(hud.BatteryColor(model.Battery))))
	bar := int(math.Round(common.Clamp(model.Battery, 0, 1) * 10))
	x = drawText(screen, x, y, strings.Repeat("■", bar)+strings.Repeat("□", 10-bar)+"  ", tcell.StyleDefault.Foreground(rgb(hud.BatteryColor(model.Battery))))
	lines := model.Lines()
	drawText(screen, x, y, strings.Join(lines[1:], "  "), textStyle)

	status := "wasd move  r sprint  f light  m mode  mouse aim  p pause  q quit"
	if paused {
		status = "PAUSED  " + status
	}
	drawText(screen, 0, y+1, status, wallStyle)
	if n := len(log); n > 0 {
		drawText(screen, 0, y+2, log[n-1], textStyle)
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
