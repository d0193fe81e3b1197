package brownian

import "fmt"

// Box is the axis-aligned simulation volume, in meters.
type Box struct {
	X1, X2 float64
	Y1, Y2 float64
	Z1, Z2 float64
}

// NewBox returns a box centered on the origin with the given full extents.
func NewBox(sx, sy, sz float64) Box {
	return Box{
		X1: -sx / 2, X2: sx / 2,
		Y1: -sy / 2, Y2: sy / 2,
		Z1: -sz / 2, Z2: sz / 2,
	}
}

func (b Box) Validate() error {
	if b.X2 <= b.X1 {
		return fmt.Errorf("%w: x extent [%g, %g]", ErrInvalidBox, b.X1, b.X2)
	}
	if b.Y2 <= b.Y1 {
		return fmt.Errorf("%w: y extent [%g, %g]", ErrInvalidBox, b.Y1, b.Y2)
	}
	if b.Z2 <= b.Z1 {
		return fmt.Errorf("%w: z extent [%g, %g]", ErrInvalidBox, b.Z1, b.Z2)
	}
	return nil
}

// Volume is the box volume in m^3.
func (b Box) Volume() float64 {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1) * (b.Z2 - b.Z1)
}

// VolumeLiters is the box volume in liters.
func (b Box) VolumeLiters() float64 {
	return b.Volume() * 1e3
}

func (b Box) Contains(v Vec) bool {
	return v.X >= b.X1 && v.X <= b.X2 &&
		v.Y >= b.Y1 && v.Y <= b.Y2 &&
		v.Z >= b.Z1 && v.Z <= b.Z2
}

func (b Box) String() string {
	return fmt.Sprintf("Box: X %.1fum, Y %.1fum, Z %.1fum",
		(b.X2-b.X1)*1e6, (b.Y2-b.Y1)*1e6, (b.Z2-b.Z1)*1e6)
}
