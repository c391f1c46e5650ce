package build

import (
	"errors"
	"testing"

	"github.com/chazu/contour/pkg/algebra"
)

func TestPendingSetGenerations(t *testing.T) {
	var p PendingSet
	if got := p.Generation(); got != 0 {
		t.Fatalf("zero value generation = %d, want 0", got)
	}

	p.BeginGeneration()
	p.Record(nil, algebra.Add)
	p.Record(nil, algebra.Add)
	p.BeginGeneration()
	p.Record(nil, algebra.Subtract)

	tests := []struct {
		scope    Scope
		wantLen  int
		wantGens []int
	}{
		{All, 3, []int{1, 1, 2}},
		{Last, 1, []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.scope.String(), func(t *testing.T) {
			got, err := p.Select(tt.scope)
			if err != nil {
				t.Fatalf("Select(%s) failed: %v", tt.scope, err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("Select(%s) returned %d elements, want %d", tt.scope, len(got), tt.wantLen)
			}
			for i, e := range got {
				if e.Generation != tt.wantGens[i] {
					t.Errorf("element %d generation = %d, want %d", i, e.Generation, tt.wantGens[i])
				}
			}
		})
	}
}

func TestPendingSetEmptyGeneration(t *testing.T) {
	var p PendingSet
	p.BeginGeneration()
	p.Record(nil, algebra.Add)
	p.BeginGeneration()

	got, err := p.Select(Last)
	if err != nil {
		t.Fatalf("Select(last) failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("a generation with no elements selected %d, want 0", len(got))
	}
}

func TestPendingSetLastBeforeAnyGeneration(t *testing.T) {
	var p PendingSet
	_, err := p.Select(Last)
	if !errors.Is(err, ErrContextState) {
		t.Fatalf("Select(last) error = %v, want ErrContextState", err)
	}
	if _, err := p.Select(All); err != nil {
		t.Errorf("Select(all) on an empty set failed: %v", err)
	}
}

func TestPendingSetSnapshot(t *testing.T) {
	var p PendingSet
	p.BeginGeneration()
	p.Record(nil, algebra.Add)

	snap, _ := p.Select(All)
	p.Record(nil, algebra.Add)
	if len(snap) != 1 {
		t.Errorf("snapshot grew to %d after a later record", len(snap))
	}
	snap[0].Mode = algebra.Private
	again, _ := p.Select(All)
	if again[0].Mode != algebra.Add {
		t.Error("mutating a snapshot changed the pending set")
	}
}
