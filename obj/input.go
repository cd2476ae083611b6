package obj

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/nightwatch/common"
)

const (
	stickDeadzone = 0.3
	stickAimReach = 200
)

// Input holds the player's controls for one frame.
type Input struct {
	// Move is the walk direction, at most unit length.
	Move common.Vec2
	// Sprint is true while a sprint key is held.
	Sprint bool
	// Aim is the arena point the light points at.
	Aim common.Vec2
	// TogglePressed is true on the frame the light key (F) or right mouse
	// button was pressed.
	TogglePressed bool
	// CyclePressed is true on the frame the mode key (Q) was pressed or the
	// wheel turned.
	CyclePressed bool
	// PausePressed is true on the frame Escape was pressed.
	PausePressed bool
	// SavePressed is true on the frame the quick-save key (F5) was pressed.
	SavePressed bool
	// DebugPressed is true on the frame the overlay key (F3) was pressed.
	DebugPressed bool

	camera *Camera
}

func NewInput(camera *Camera) *Input {
	return &Input{camera: camera}
}

// Update polls keyboard, mouse and the first gamepad. from is the player's
// position, used to aim with the right stick.
func (i *Input) Update(from common.Vec2) {
	mx, my := ebiten.CursorPosition()
	i.Aim = i.camera.ScreenToWorld(float64(mx), float64(my))

	i.Move = MoveVector(
		ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp),
		ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown),
		ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft),
		ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight),
	)
	i.Sprint = ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	_, wheel := ebiten.Wheel()
	i.TogglePressed = inpututil.IsKeyJustPressed(ebiten.KeyF) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	i.CyclePressed = inpututil.IsKeyJustPressed(ebiten.KeyQ) || wheel != 0
	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyEscape)
	i.SavePressed = inpututil.IsKeyJustPressed(ebiten.KeyF5)
	i.DebugPressed = inpututil.IsKeyJustPressed(ebiten.KeyF3)

	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 {
		return
	}
	gid := ids[0]
	left := common.V(
		ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal),
		ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical),
	)
	if left.Len() > stickDeadzone {
		i.Move = left
		if i.Move.Len() > 1 {
			i.Move = i.Move.Normalize()
		}
	}
	right := common.V(
		ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisRightStickHorizontal),
		ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisRightStickVertical),
	)
	if right.Len() > stickDeadzone {
		i.Aim = from.Add(right.Normalize().Scale(stickAimReach))
	}

	i.Sprint = i.Sprint || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonFrontBottomLeft)
	i.TogglePressed = i.TogglePressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonFrontBottomRight)
	i.CyclePressed = i.CyclePressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonFrontTopRight)
	i.PausePressed = i.PausePressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight)
}

// MoveVector combines held direction keys into a walk direction.
func MoveVector(up, down, left, right bool) common.Vec2 {
	var v common.Vec2
	if up {
		v.Y--
	}
	if down {
		v.Y++
	}
	if left {
		v.X--
	}
	if right {
		v.X++
	}
	if v.X != 0 && v.Y != 0 {
		v = v.Scale(1 / math.Sqrt2)
	}
	return v
}
