package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	sweepIndex   int
	sweepFrom    float64
	sweepTo      float64
	sweepSteps   int
	sweepT       float64
	sweepWorkers int
)

// sweepCmd evaluates the model across a range of one parameter. Every
// worker compiles its own handle; handles are never shared between
// goroutines.
var sweepCmd = &cobra.Command{
	Use:   "sweep <model.json>",
	Short: "Evaluate across a parameter range, one engine handle per worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if sweepSteps < 2 {
			return fmt.Errorf("--steps must be at least 2")
		}

		ctx := cmd.Context()

		// One shared compile up front to learn the shape and fail early.
		probe, _, cl, err := compileFile(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		ns := probe.StateCount()
		u0 := probe.InitialStates()
		p0 := probe.InitialParams()
		probe.Close()
		cl()

		if sweepIndex < 0 || sweepIndex >= len(p0) {
			return fmt.Errorf("--param %d out of range (model has %d parameters)", sweepIndex, len(p0))
		}

		type point struct {
			val float64
			du  []float64
		}
		results := make([]point, 0, sweepSteps)
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(sweepWorkers)

		for i := 0; i < sweepSteps; i++ {
			val := sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(sweepSteps-1)
			g.Go(func() error {
				m, _, cl, err := compileFile(gctx, cfg, args[0])
				if err != nil {
					return err
				}
				defer cl()
				defer m.Close()

				p := append([]float64(nil), p0...)
				p[sweepIndex] = val

				du := make([]float64, ns)
				if err := m.Evaluate(gctx, du, u0, p, sweepT); err != nil {
					return fmt.Errorf("p[%d]=%g: %w", sweepIndex, val, err)
				}

				mu.Lock()
				results = append(results, point{val: val, du: du})
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		sort.Slice(results, func(i, j int) bool { return results[i].val < results[j].val })

		head := color.New(color.FgCyan, color.Bold)
		head.Printf("p[%d] sweep at t=%g, u=%v\n", sweepIndex, sweepT, u0)
		for _, r := range results {
			fmt.Printf("  %12g  du=%v\n", r.val, r.du)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().IntVar(&sweepIndex, "param", 0, "parameter index to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "range start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "range end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of points")
	sweepCmd.Flags().Float64Var(&sweepT, "t", 0, "independent variable value")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 4, "concurrent workers")
}
