// Package build implements builder contexts over a kernel.Kernel.
//
// A Session owns an explicit stack of Builders. Entering pushes a frame,
// exiting pops it and, when a parent frame exists, folds the child's result
// into the parent: a line's wire becomes pending edges of an enclosing
// sketch, a sketch's faces become pending faces of an enclosing part, and a
// builder nested in one of its own kind is combined into the parent's
// working shape under the child's mode.
//
// Every element a builder realizes is recorded in its PendingSet under a
// generation number. Selectors take a Scope: Last returns only the most
// recent generation, All returns every recorded element in insertion order.
//
// Builders work in their own local coordinates. A builder's plane is
// expressed in its parent's coordinates (global at the top level) and its
// result is relocated by that plane when it exits.
//
// Builders are not safe for concurrent use. Independent models should use
// independent sessions.
package build
