package main

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/nightwatch/common"
	"github.com/milk9111/nightwatch/cue"
	"github.com/milk9111/nightwatch/enemy"
	"github.com/milk9111/nightwatch/hud"
	"github.com/milk9111/nightwatch/sim"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const beamRays = 32

var (
	face text.Face = text.NewGoXFace(basicfont.Face7x13)

	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	cam := g.camera
	z := float32(cam.Zoom())

	x0, y0 := cam.WorldToScreen(common.V(0, 0))
	vector.DrawFilledRect(screen, x0, y0, float32(g.arena.Width)*z, float32(g.arena.Height)*z, colornames.Darkslategray, false)

	player, hasPlayer := g.sim.Player()
	if hasPlayer && player.Light.Visible {
		g.drawBeam(screen, player)
	}

	for _, r := range g.sim.Walls() {
		x, y := cam.WorldToScreen(common.V(r.X, r.Y))
		vector.DrawFilledRect(screen, x, y, float32(r.Width)*z, float32(r.Height)*z, colornames.Dimgray, false)
	}

	for _, e := range g.sim.Enemies() {
		g.drawEnemy(screen, e)
	}

	if hasPlayer {
		x, y := cam.WorldToScreen(player.Position)
		r := float32(player.Radius) * z
		var c color.Color = player.Color
		if player.Dead {
			c = colornames.Darkred
		}
		vector.DrawFilledCircle(screen, x, y, r, c, true)
		dir := common.FromAngle(player.Facing).Scale(player.Radius * 1.6)
		fx, fy := cam.WorldToScreen(player.Position.Add(dir))
		vector.StrokeLine(screen, x, y, fx, fy, 2, colornames.White, true)
	}
}

// drawBeam fills the outer and inner cones, each ray cut short by walls.
func (g *Game) drawBeam(screen *ebiten.Image, p sim.PlayerView) {
	l := p.Light
	alpha := uint8(common.Clamp(l.Intensity, 0, 1) * 90)
	outer := beamFan(g, p, l.OuterCone)
	inner := beamFan(g, p, l.InnerCone)
	fillPolygon(screen, outer, color.NRGBA{R: 0xff, G: 0xf0, B: 0xa0, A: alpha})
	fillPolygon(screen, inner, color.NRGBA{R: 0xff, G: 0xf8, B: 0xd0, A: alpha})
}

func beamFan(g *Game, p sim.PlayerView, coneDeg float64) []common.Vec2 {
	half := common.Deg2Rad(coneDeg)
	points := make([]common.Vec2, 0, beamRays+2)
	points = append(points, p.Position)
	for i := 0; i <= beamRays; i++ {
		a := p.Facing - half + 2*half*float64(i)/beamRays
		end := p.Position.Add(common.FromAngle(a).Scale(p.Light.Range))
		hit, _ := g.sim.Raycast(p.Position, end)
		points = append(points, hit)
	}
	for i := range points {
		x, y := g.camera.WorldToScreen(points[i])
		points[i] = common.V(float64(x), float64(y))
	}
	return points
}

func fillPolygon(dst *ebiten.Image, points []common.Vec2, c color.NRGBA) {
	if len(points) < 3 {
		return
	}
	var path vector.Path
	path.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(c.R) / 255 * float32(c.A) / 255
		vs[i].ColorG = float32(c.G) / 255 * float32(c.A) / 255
		vs[i].ColorB = float32(c.B) / 255 * float32(c.A) / 255
		vs[i].ColorA = float32(c.A) / 255
	}
	dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) drawEnemy(screen *ebiten.Image, e sim.EnemyView) {
	cam := g.camera
	z := float32(cam.Zoom())
	x, y := cam.WorldToScreen(e.Position)
	r := float32(e.Radius) * z

	if g.debug && e.State != enemy.Dead {
		sight := float32(e.SightRadius) * z
		vector.StrokeCircle(screen, x, y, sight, 1, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x60}, true)
		half := common.Deg2Rad(e.SightAngle)
		for _, a := range []float64{e.Facing - half, e.Facing + half} {
			ex, ey := cam.WorldToScreen(e.Position.Add(common.FromAngle(a).Scale(e.SightRadius)))
			vector.StrokeLine(screen, x, y, ex, ey, 1, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x60}, true)
		}
		if e.State == enemy.Investigating || e.State == enemy.Chasing {
			lx, ly := cam.WorldToScreen(e.LastKnown)
			vector.StrokeLine(screen, lx-4, ly-4, lx+4, ly+4, 1, colornames.Orange, true)
			vector.StrokeLine(screen, lx-4, ly+4, lx+4, ly-4, 1, colornames.Orange, true)
		}
	}

	var c color.Color = e.Color
	switch e.State {
	case enemy.Dead:
		c = colornames.Dimgray
	case enemy.Stunned:
		c = colornames.Lightblue
	}
	vector.DrawFilledCircle(screen, x, y, r, c, true)

	if f, ok := g.flashes[uint64(e.Entity)]; ok {
		ring := colornames.White
		if f.name == cue.AnimAttack {
			ring = colornames.Red
		}
		vector.StrokeCircle(screen, x, y, r+4, 2, ring, true)
	}

	if e.State != enemy.Dead && e.Health < 1 {
		w := r * 2
		vector.DrawFilledRect(screen, x-r, y-r-6, w, 3, colornames.Darkred, false)
		vector.DrawFilledRect(screen, x-r, y-r-6, w*float32(e.Health), 3, colornames.Limegreen, false)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	m := g.model
	battery := hud.RGBA(hud.BatteryColor(m.Battery))
	drawText(screen, hud.BatteryText(m.Battery), 16, 16, battery)
	bar := float32(common.Clamp(m.Battery, 0, 1))
	vector.StrokeRect(screen, 16, 34, 160, 10, 1, colornames.White, false)
	vector.DrawFilledRect(screen, 16, 34, 160*bar, 10, battery, false)

	lines := m.Lines()
	for i, line := range lines[1:] {
		drawText(screen, line, 16, 52+float64(i)*16, colornames.White)
	}

	for i, line := range g.journal {
		drawText(screen, line, 16, baseHeight-16-float64(len(g.journal)-i)*16, colornames.Lightgray)
	}

	info := fmt.Sprintf("seed %d  tick %d  FPS %.0f", g.sim.Seed(), g.sim.Tick(), ebiten.ActualFPS())
	drawText(screen, info, baseWidth-float64(len(info))*7-16, 16, colornames.Gray)
	if g.status != "" && time.Now().Before(g.statusUntil) {
		drawText(screen, g.status, baseWidth-float64(len(g.status))*7-16, 34, colornames.Gold)
	}
	if g.debug {
		y := 120
		for _, e := range g.sim.Enemies() {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("#%d %-8s %-13s hp %3.0f%%", e.Entity.Index(), e.Type, e.State, e.Health*100), 16, y)
			y += 16
		}
	}
	if player, ok := g.sim.Player(); ok && player.Dead {
		msg := "you died - esc for menu"
		drawText(screen, msg, baseWidth/2-float64(len(msg))*7/2, baseHeight/2, colornames.Red)
	}
}

func drawText(dst *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}
