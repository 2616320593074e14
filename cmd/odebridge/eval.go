package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	evalT     float64
	evalU     string
	evalP     string
	evalTrace string
)

// traceRecord is one evaluation written to a msgpack trace file.
type traceRecord struct {
	T  float64   `msgpack:"t"`
	U  []float64 `msgpack:"u"`
	P  []float64 `msgpack:"p"`
	Du []float64 `msgpack:"du"`
}

var evalCmd = &cobra.Command{
	Use:   "eval <model.json>",
	Short: "Evaluate the right-hand side at a point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		m, _, cl, err := compileFile(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		defer cl()
		defer m.Close()

		u := m.InitialStates()
		if evalU != "" {
			if u, err = parseVec(evalU); err != nil {
				return fmt.Errorf("--u: %w", err)
			}
		}
		p := m.InitialParams()
		if evalP != "" {
			if p, err = parseVec(evalP); err != nil {
				return fmt.Errorf("--p: %w", err)
			}
		}

		du := make([]float64, m.StateCount())
		if err := m.Evaluate(ctx, du, u, p, evalT); err != nil {
			color.Red("evaluation fault: %v", err)
			return err
		}

		fmt.Printf("t  = %g\n", evalT)
		fmt.Printf("u  = %v\n", u)
		fmt.Printf("p  = %v\n", p)
		color.Green("du = %v", du)

		if evalTrace != "" {
			if err := appendTrace(evalTrace, traceRecord{T: evalT, U: u, P: p, Du: du}); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().Float64VarP(&evalT, "t", "t", 0, "independent variable value")
	evalCmd.Flags().StringVarP(&evalU, "u", "u", "", "state vector, comma separated (default: initial states)")
	evalCmd.Flags().StringVarP(&evalP, "p", "p", "", "parameter vector, comma separated (default: model defaults)")
	evalCmd.Flags().StringVar(&evalTrace, "trace", "", "append the evaluation to a msgpack trace file")
}

func parseVec(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func appendTrace(path string, rec traceRecord) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return msgpack.NewEncoder(f).Encode(rec)
}
