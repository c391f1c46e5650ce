package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/chazu/contour/pkg/config"
	"github.com/chazu/contour/pkg/engine"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/kernel/instrument"
	"github.com/chazu/contour/pkg/kernel/sdfx"
	"github.com/chazu/contour/pkg/tessellate"
	prom "github.com/prometheus/client_golang/prometheus"
)

// colorPalette is a default palette used to assign distinct colors to
// shown shapes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the engine, the instrumented kernel and the tessellator
// together for the commands.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	log    *slog.Logger
}

// MeshData is the JSON mesh format handed to viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// ShapeData summarizes one shown shape.
type ShapeData struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Length float64 `json:"length,omitempty"`
	Area   float64 `json:"area,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating one script.
type EvalResult struct {
	Shapes   []ShapeData     `json:"shapes"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp builds the kernel described by cfg, wraps it with metrics
// registered on reg, and creates an engine over it.
func NewApp(cfg *config.Config, logger *slog.Logger, reg prom.Registerer) *App {
	k := instrument.New(sdfx.New(cfg.KernelOptions(logger)...), reg)
	return &App{
		engine: engine.NewEngine(
			engine.WithKernel(k),
			engine.WithLogger(logger),
			engine.WithTimeout(cfg.Engine.Timeout),
		),
		kernel: k,
		log:    logger,
	}
}

// Evaluate runs source and returns shape summaries, meshes and errors.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Shapes:   []ShapeData{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script.
	res, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Message: w.Message})
	}

	// Step 3: Summarize every shown shape.
	for i, it := range res.Shown {
		result.Shapes = append(result.Shapes, a.summarize(i, it))
	}

	// Step 4: Tessellate the shapes that have a surface.
	meshes, err := tessellate.Tessellate(res.Shown, a.kernel)
	if err != nil {
		a.log.Error("tessellate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return result
}

// summarize measures a shown shape along its own dimension.
func (a *App) summarize(i int, it tessellate.Item) ShapeData {
	sd := ShapeData{Name: it.Name, Kind: it.Shape.Kind().String()}
	if sd.Name == "" {
		sd.Name = "shape-" + strconv.Itoa(i+1)
	}
	var (
		metric kernel.Metric
		dst    *float64
	)
	switch kernel.Dimension(it.Shape) {
	case 1:
		metric, dst = kernel.Length, &sd.Length
	case 2:
		metric, dst = kernel.Area, &sd.Area
	case 3:
		metric, dst = kernel.Volume, &sd.Volume
	default:
		return sd
	}
	v, err := a.kernel.Measure(it.Shape, metric)
	if err != nil {
		a.log.Warn("measure failed", "shape", sd.Name, "metric", metric.String(), "error", err)
		return sd
	}
	*dst = v
	return sd
}
