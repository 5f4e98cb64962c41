package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocas"
)

var (
	unknowns []string
	trace    bool
)

var solveCmd = &cobra.Command{
	Use:   "solve STATEMENT",
	Short: "Solve an equation, inequality or system",
	Long: `Solve a "cmp" or "system" statement for the unknowns given with -u.

With --trace the isolation moves are printed after the result, one per
line, indented by branch.`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

var factorCmd = &cobra.Command{
	Use:   "factor EXPR",
	Short: "Factor an expression over the Gaussian rationals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := readNode(cmd, args[0])
		if err != nil {
			return err
		}
		f, err := gocas.NewFactorer(opts).FactorE(n)
		if err != nil {
			return err
		}
		return printNode(cmd, f)
	},
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify EXPR",
	Short: "Expand then factor an expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := readNode(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := gocas.Catch(func() gocas.Node { return gocas.NewFactorer(opts).Factor(gocas.Expand(n)) })
		if err != nil {
			return err
		}
		return printNode(cmd, out)
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand EXPR",
	Short: "Multiply out products and integer powers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := readNode(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := gocas.Catch(func() gocas.Node { return gocas.Expand(n) })
		if err != nil {
			return err
		}
		return printNode(cmd, out)
	},
}

var divideCmd = &cobra.Command{
	Use:   "divide DIVIDEND DIVISOR",
	Short: "Polynomial long division",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readNode(cmd, args[0])
		if err != nil {
			return err
		}
		b, err := readNode(cmd, args[1])
		if err != nil {
			return err
		}
		q, r, err := gocas.LongDivision(a, b)
		if err != nil {
			return err
		}
		if jsonOut {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
				"quotient":  gocas.NodeMap(q),
				"remainder": gocas.NodeMap(r),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "quotient:  %s\nremainder: %s\n", q, r)
		return nil
	},
}

var toolCmd = &cobra.Command{
	Use:   "tool NAME [PARAMS]",
	Short: "Run one tool call and print the JSON response",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := gocas.ToolRequest{Tool: args[0], Params: map[string]interface{}{}}
		if len(args) == 2 {
			data, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &req.Params); err != nil {
				return fmt.Errorf("params: %w", err)
			}
		}
		resp := gocas.NewSolver(opts).HandleToolCall(req)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if resp.Error != "" {
			return fmt.Errorf("%s", resp.Error)
		}
		return nil
	},
}

func init() {
	solveCmd.Flags().StringSliceVarP(&unknowns, "unknown", "u", nil, "unknown to solve for (repeatable)")
	solveCmd.Flags().BoolVar(&trace, "trace", false, "print the solving trace")
	_ = solveCmd.MarkFlagRequired("unknown")
}

func runSolve(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	st, err := gocas.ParseStatementJSON(data)
	if err != nil {
		return err
	}
	o := opts
	rec := &gocas.MemoryRecorder{}
	if trace {
		o.Recorder = rec
	} else {
		o.Recorder = gocas.NewLogRecorder(logger)
	}
	out, err := gocas.NewSolver(o).Solve(unknowns, st)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if jsonOut {
		if err := json.NewEncoder(w).Encode(gocas.StatementMap(out)); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, out.String())
	}
	if trace {
		fmt.Fprintln(w, rec.Render())
	}
	return nil
}
