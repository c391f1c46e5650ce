package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/chazu/contour/pkg/config"
	prom "github.com/prometheus/client_golang/prometheus"
)

// testConfig keeps meshing and sampling coarse so the pipeline stays fast.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Kernel.MeshCells = 32
	return cfg
}

func newTestApp() *App {
	return NewApp(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)), prom.NewRegistry())
}

func requireNoErrors(t *testing.T, result EvalResult) {
	t.Helper()
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
}

func shapeNamed(result EvalResult, name string) (ShapeData, bool) {
	for _, s := range result.Shapes {
		if s.Name == name {
			return s, true
		}
	}
	return ShapeData{}, false
}

// TestE2ELeafExample exercises the full pipeline: script, engine, builders,
// kernel, tessellation.
func TestE2ELeafExample(t *testing.T) {
	source, err := os.ReadFile("../../examples/leaf.contour")
	if err != nil {
		t.Fatalf("failed to read leaf.contour: %v", err)
	}

	result := newTestApp().Evaluate(context.Background(), string(source))
	requireNoErrors(t, result)

	if len(result.Shapes) != 2 {
		t.Fatalf("expected 2 shown shapes, got %d", len(result.Shapes))
	}
	leaf, ok := shapeNamed(result, "leaf")
	if !ok {
		t.Fatal("missing shape \"leaf\"")
	}
	if leaf.Kind != "face" {
		t.Errorf("leaf kind = %q, want face", leaf.Kind)
	}
	if math.Abs(leaf.Area-0.2741600685288115) > 1e-5 {
		t.Errorf("leaf area = %v, want 0.27416", leaf.Area)
	}

	plate, ok := shapeNamed(result, "leaf-plate")
	if !ok {
		t.Fatal("missing shape \"leaf-plate\"")
	}
	plain := 0.2741600685288115 * 0.1
	if plate.Volume >= plain || plate.Volume < 0.8*plain {
		t.Errorf("plate volume = %v, want a little less than %v", plate.Volume, plain)
	}

	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
			t.Errorf("mesh %q has no geometry", m.Name)
		}
		if m.Color == "" {
			t.Errorf("mesh %q: no color assigned", m.Name)
		}
	}
}

func TestE2EBracketExample(t *testing.T) {
	source, err := os.ReadFile("../../examples/bracket.contour")
	if err != nil {
		t.Fatalf("failed to read bracket.contour: %v", err)
	}

	result := newTestApp().Evaluate(context.Background(), string(source))
	requireNoErrors(t, result)

	bracket, ok := shapeNamed(result, "bracket")
	if !ok {
		t.Fatal("missing shape \"bracket\"")
	}
	want := 4*2*0.25 + 0.25*2*1.5 - 2*math.Pi*0.15*0.15*0.25
	if math.Abs(bracket.Volume-want) > 0.05*want {
		t.Errorf("bracket volume = %v, want about %v", bracket.Volume, want)
	}
	if len(result.Meshes) != 1 || result.Meshes[0].Name != "bracket" {
		t.Errorf("expected one mesh named bracket, got %+v", result.Meshes)
	}
}

func TestE2EEmptySource(t *testing.T) {
	result := newTestApp().Evaluate(context.Background(), "")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	// JSON consumers expect arrays, never null.
	if result.Shapes == nil || result.Meshes == nil || result.Errors == nil || result.Warnings == nil {
		t.Errorf("result slices must be non-nil: %+v", result)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

func TestE2ESyntaxError(t *testing.T) {
	result := newTestApp().Evaluate(context.Background(), "(def p (begin-part)\n(box p 1 1")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EUnendedBuilderIsAnError(t *testing.T) {
	result := newTestApp().Evaluate(context.Background(), `
(def p (begin-part))
(box p 1 1 1)
`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "never ended") {
		t.Errorf("unexpected message: %q", result.Errors[0].Message)
	}
}

func TestE2EShownWireIsWarnedAndNotMeshed(t *testing.T) {
	result := newTestApp().Evaluate(context.Background(), `
(def l (begin-line))
(line l (vec 0 0 0) (vec 3 0 0))
(show (end l) "rail")
`)
	requireNoErrors(t, result)

	if len(result.Shapes) != 1 || result.Shapes[0].Length != 3 {
		t.Errorf("expected one shape of length 3, got %+v", result.Shapes)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected no meshes for a wire, got %d", len(result.Meshes))
	}
}

func TestE2EUnnamedShapesArePositional(t *testing.T) {
	result := newTestApp().Evaluate(context.Background(), `
(def p (begin-part))
(box p 1 1 1)
(show (end p))
`)
	requireNoErrors(t, result)
	if len(result.Shapes) != 1 || result.Shapes[0].Name != "shape-1" {
		t.Errorf("expected shape-1, got %+v", result.Shapes)
	}
	if len(result.Meshes) != 1 || result.Meshes[0].Name != "shape-1" {
		t.Errorf("expected mesh shape-1, got %+v", result.Meshes)
	}
}

func TestE2EPaletteWraps(t *testing.T) {
	var b strings.Builder
	n := len(colorPalette) + 1
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "(def p%d (begin-part))\n(box p%d 1 1 1)\n(show (move (end p%d) (pos %d 0 0)))\n", i, i, i, 2*i)
	}

	result := newTestApp().Evaluate(context.Background(), b.String())
	requireNoErrors(t, result)

	if len(result.Meshes) != n {
		t.Fatalf("expected %d meshes, got %d", n, len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d color = %s, want %s", i, m.Color, want)
		}
	}
	if result.Meshes[n-1].Color != result.Meshes[0].Color {
		t.Error("palette should wrap around")
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	app := newTestApp()
	for _, source := range []string{
		";; just a comment",
		"\n\n  ;; first\n\t;; second\n\n",
	} {
		result := app.Evaluate(context.Background(), source)
		if len(result.Errors) > 0 || len(result.Shapes) > 0 {
			t.Errorf("source %q: expected nothing, got %+v", source, result)
		}
	}
}

func TestE2EArithmeticDimensions(t *testing.T) {
	source := `
(def base-length 4)
(def margin 0.5)
(def inner-length (- base-length (* 2 margin)))

(def p (begin-part :name "inner"))
(box p inner-length 2 (/ 1 2))
(show (end p) "inner")
`
	result := newTestApp().Evaluate(context.Background(), source)
	requireNoErrors(t, result)

	if len(result.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(result.Shapes))
	}
	if got := result.Shapes[0].Volume; math.Abs(got-3) > 0.03 {
		t.Errorf("volume = %v, want 3", got)
	}
}

// TestE2ERapidEvaluation alternates valid and invalid sources on one App.
// The engine serializes calls, so each evaluation must start clean.
func TestE2ERapidEvaluation(t *testing.T) {
	app := newTestApp()

	sources := []string{
		"(def p (begin-part))\n(box p 1 1 1)\n(show (end p) \"ok\")",
		"(def p (begin-part)",
		"",
		"(def l (begin-line))\n(box l 1 1 1)",
		"(def s (begin-sketch))\n(circle s 1)\n(show (end s) \"disc\")",
		"(+ 1 2)",
		";; just a comment",
		"(undefined-func 1 2 3)",
		"(def p (begin-part))\n(cylinder p 1 2)\n(show (end p) \"last\")",
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			result := app.Evaluate(context.Background(), source)
			if strings.Contains(source, "show") && len(result.Errors) > 0 {
				t.Errorf("iteration %d: unexpected errors %v", i, result.Errors)
			}
		}()
	}
}

func TestE2ECancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestApp().Evaluate(ctx, "(def p (begin-part))\n(box p 1 1 1)\n(show (end p))")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a cancelled context")
	}
}
