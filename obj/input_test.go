package obj

import (
	"math"
	"testing"

	"github.com/milk9111/nightwatch/common"
)

func TestMoveVector(t *testing.T) {
	d := 1 / math.Sqrt2
	cases := []struct {
		name                  string
		up, down, left, right bool
		want                  common.Vec2
	}{
		{"none", false, false, false, false, common.Vec2{}},
		{"up", true, false, false, false, common.V(0, -1)},
		{"opposed", true, true, false, false, common.Vec2{}},
		{"down_right", false, true, false, true, common.V(d, d)},
		{"up_left", true, false, true, false, common.V(-d, -d)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MoveVector(tc.up, tc.down, tc.left, tc.right); got != tc.want {
				t.Fatalf("MoveVector = %v, want %v", got, tc.want)
			}
		})
	}
}
