package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/tessellate"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type evalOptions struct {
	json   bool
	stlDir string
	stats  bool
}

func newEvalCmd(st *rootState) *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a script and report the shapes it shows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, st, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "print meshes and summaries as JSON")
	cmd.Flags().StringVar(&opts.stlDir, "stl", "", "write one ASCII STL file per meshed shape into this directory")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print kernel call counts after evaluation")
	return cmd
}

func runEval(cmd *cobra.Command, st *rootState, opts *evalOptions, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	reg := prom.NewRegistry()
	app := NewApp(st.cfg, st.log, reg)
	result := app.Evaluate(cmd.Context(), string(source))

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printResult(out, path, result)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: evaluation failed with %d error(s)", path, len(result.Errors))
	}

	if opts.stlDir != "" {
		files, err := writeSTLs(opts.stlDir, result.Meshes)
		if err != nil {
			return err
		}
		st.log.Info("wrote STL files", "dir", opts.stlDir, "count", len(files))
	}
	if opts.stats {
		if err := printStats(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}
	return nil
}

// printResult writes one line per shown shape, then warnings and errors.
func printResult(w io.Writer, path string, r EvalResult) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "%s:%d: error: %s\n", path, e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "%s: error: %s\n", path, e.Message)
		}
	}
	for _, wn := range r.Warnings {
		fmt.Fprintf(w, "%s: warning: %s\n", path, wn.Message)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range r.Shapes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Kind, measures(s))
	}
	tw.Flush()
}

func measures(s ShapeData) string {
	var parts []string
	if s.Length != 0 {
		parts = append(parts, fmt.Sprintf("length=%.6g", s.Length))
	}
	if s.Area != 0 {
		parts = append(parts, fmt.Sprintf("area=%.6g", s.Area))
	}
	if s.Volume != 0 {
		parts = append(parts, fmt.Sprintf("volume=%.6g", s.Volume))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// writeSTLs writes each mesh to dir/<name>.stl and returns the paths.
func writeSTLs(dir string, meshes []MeshData) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create STL directory: %w", err)
	}
	var files []string
	for _, m := range meshes {
		path := filepath.Join(dir, fileName(m.Name)+".stl")
		f, err := os.Create(path)
		if err != nil {
			return files, fmt.Errorf("failed to create %s: %w", path, err)
		}
		err = tessellate.WriteSTL(f, &kernel.Mesh{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
		})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return files, fmt.Errorf("failed to write %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// fileName maps a shape name to a safe file name.
func fileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "shape"
	}
	return clean
}

// printStats writes the kernel call counters gathered from reg, one line
// per operation and outcome.
func printStats(w io.Writer, reg prom.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	type row struct {
		op, result string
		count      float64
	}
	var rows []row
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "calls_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			r := row{count: m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "op":
					r.op = lp.GetValue()
				case "result":
					r.result = lp.GetValue()
				}
			}
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].op != rows[j].op {
			return rows[i].op < rows[j].op
		}
		return rows[i].result < rows[j].result
	})
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OP\tRESULT\tCALLS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\n", r.op, r.result, r.count)
	}
	return tw.Flush()
}
