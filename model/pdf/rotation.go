package pdf

import "fmt"

// Rotation is a clockwise page rotation in degrees.
type Rotation int

const (
	Degrees0   Rotation = 0
	Degrees90  Rotation = 90
	Degrees180 Rotation = 180
	Degrees270 Rotation = 270
)

func (r Rotation) Valid() bool {
	return r == Degrees0 || r == Degrees90 || r == Degrees180 || r == Degrees270
}

// ParseRotation normalizes any multiple of 90 (negative values rotate counter clockwise).
func ParseRotation(deg int) (Rotation, error) {
	if deg%90 != 0 {
		return Degrees0, fmt.Errorf("rotation %d is not a multiple of 90", deg)
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return Rotation(deg), nil
}
