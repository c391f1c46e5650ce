// Package graph records construction history for contour.
// The history is an append-only DAG: every realized element, combine,
// operation and builder fold becomes a content-addressed node whose
// children are the nodes it was derived from.
package graph
