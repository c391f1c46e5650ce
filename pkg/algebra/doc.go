// Package algebra combines located shapes.
//
// Combine is the mode resolver used by builders: it merges a new element
// into a working shape by union, difference, intersection or replacement,
// or leaves the working shape alone for private helper geometry. The same
// rules are exposed as plain functions (Union, Difference, Common) for
// shape expressions written outside any builder.
//
// Transforms never mutate their operand. Compose(a, b) applies b first and
// then a, so that
//
//	Moved(k, Moved(k, s, b), a) == Moved(k, s, Compose(a, b))
//
// up to numerical tolerance.
package algebra
