// Package geom holds the spatial vocabulary shared by builders, kernels and
// the shape algebra: vectors (sdfx v3), rigid Locations, Planes and Axes.
//
// Locations are immutable. Composition follows the usual rigid-transform
// convention: a.Mul(b) applies b first and then a, so that
//
//	a.Mul(b).Point(p) == a.Point(b.Point(p))
//
// Composition is associative but not commutative.
package geom
