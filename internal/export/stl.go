// Package export writes baked meshes to interchange formats.
package export

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/logger"
	"github.com/Faultbox/sculpt/pkg/math"
)

var ErrEmptyMesh = errors.New("mesh has no triangles")

// Triangles converts an indexed mesh into sdfx triangles, keeping the
// winding so STL facet normals point outward.
func Triangles(m *mesh.Mesh) ([]*sdf.Triangle3, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tris = append(tris, &sdf.Triangle3{
			vec(m.Vertices[m.Indices[i]].Position),
			vec(m.Vertices[m.Indices[i+1]].Position),
			vec(m.Vertices[m.Indices[i+2]].Position),
		})
	}
	return tris, nil
}

func vec(p math.Vec3) v3.Vec {
	return v3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

// WriteSTL saves m as a binary STL file.
func WriteSTL(path string, m *mesh.Mesh) error {
	tris, err := Triangles(m)
	if err != nil {
		return fmt.Errorf("export %q: %w", m.Name, err)
	}
	if len(tris) == 0 {
		return fmt.Errorf("export %q: %w", m.Name, ErrEmptyMesh)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.L().Info("mesh exported",
		zap.String("path", path),
		zap.String("mesh", m.Name),
		zap.Int("triangles", len(tris)))
	return nil
}
