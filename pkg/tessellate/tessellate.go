// Package tessellate turns shown shapes into named triangle meshes for an
// external viewer. One mesh is produced per shown shape.
package tessellate

import (
	"fmt"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/joint"
	"github.com/chazu/contour/pkg/kernel"
)

// Item is a shape handed to the viewer.
type Item struct {
	Name  string
	Shape kernel.Shape
	// Location places the shape before meshing. The zero value leaves it
	// where it is.
	Location geom.Location
}

// FromBodies shows each body at its current location.
func FromBodies(bodies ...*joint.Body) []Item {
	items := make([]Item, 0, len(bodies))
	for _, b := range bodies {
		items = append(items, Item{Name: b.Name, Shape: b.Shape, Location: b.Location})
	}
	return items
}

// Tessellate meshes every item with k. Shapes without a surface (curves,
// empty results) are skipped. Unnamed items are named after their position.
// The tessellator never modifies the shapes it is given.
func Tessellate(items []Item, k kernel.Kernel) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for i, it := range items {
		if !surfaced(it.Shape) {
			continue
		}
		name := it.Name
		if name == "" {
			name = fmt.Sprintf("shape-%d", i+1)
		}
		mesh, err := meshItem(k, it)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %s: %w", name, err)
		}
		mesh.Name = name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func meshItem(k kernel.Kernel, it Item) (*kernel.Mesh, error) {
	s := it.Shape
	if it.Location != (geom.Location{}) {
		moved, err := k.Transform(s, it.Location)
		if err != nil {
			return nil, err
		}
		s = moved
	}
	return k.ToMesh(s)
}

func surfaced(s kernel.Shape) bool {
	return kernel.Dimension(s) >= 2
}
