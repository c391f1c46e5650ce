package tessellate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/contour/pkg/kernel"
)

// WriteSTL writes m as an ASCII STL solid.
func WriteSTL(w io.Writer, m *kernel.Mesh) error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("stl: index count %d is not a multiple of 3", len(m.Indices))
	}
	for _, i := range m.Indices {
		if n := int(3*i + 2); n >= len(m.Vertices) || n >= len(m.Normals) {
			return fmt.Errorf("stl: index %d out of range", i)
		}
	}
	name := strings.Join(strings.Fields(m.Name), "_")
	if name == "" {
		name = "contour"
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for t := 0; t < len(m.Indices); t += 3 {
		a := m.Indices[t]
		fmt.Fprintf(bw, "  facet normal %g %g %g\n    outer loop\n",
			m.Normals[3*a], m.Normals[3*a+1], m.Normals[3*a+2])
		for _, i := range m.Indices[t : t+3] {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2])
		}
		fmt.Fprint(bw, "    endloop\n  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}
