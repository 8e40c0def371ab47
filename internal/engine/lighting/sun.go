// Package lighting provides the directional light used by the lit shader.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/sculpt/pkg/math"
)

// SunDirection converts longitude/latitude in degrees to a unit vector
// pointing towards the sun. Longitude rotates around Y from +Z, latitude is
// elevation above the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := longitude * math32.Pi / 180
	lat := latitude * math32.Pi / 180
	return math.Vec3{
		X: math32.Cos(lat) * math32.Sin(lon),
		Y: math32.Sin(lat),
		Z: math32.Cos(lat) * math32.Cos(lon),
	}
}

// Light is a single directional light with an ambient term.
type Light struct {
	Longitude float32   `yaml:"longitude"`
	Latitude  float32   `yaml:"latitude"`
	Ambient   math.Vec3 `yaml:"ambient"`
	Diffuse   math.Vec3 `yaml:"diffuse"`
}

// DefaultLight is a warm key light from the upper front right.
func DefaultLight() Light {
	return Light{
		Longitude: 35,
		Latitude:  50,
		Ambient:   math.Vec3{X: 0.25, Y: 0.25, Z: 0.28},
		Diffuse:   math.Vec3{X: 1, Y: 0.96, Z: 0.9},
	}
}

// Direction returns the unit vector towards the light.
func (l Light) Direction() math.Vec3 {
	return SunDirection(l.Longitude, l.Latitude)
}
