// Package main provides the gocas CLI.
//
// Expressions and statements are given as JSON, inline, from a file with
// @path, or from stdin with -:
//
//	gocas solve '{"type":"cmp","left":{"type":"sym","name":"x"},"rel":"=","right":{"type":"num","value":"2"}}' -u x
//	gocas factor @poly.json
//	gocas serve --addr :8080
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocas"
)

// Version is the current gocas CLI version
var Version = "0.3.0"

var (
	configPath string
	logLevel   string
	logFormat  string
	jsonOut    bool

	maxSolveDepth   int
	maxFactorDegree int
	maxGroebner     int
	tolerance       float64

	opts   gocas.Options
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "gocas",
	Short:             "gocas - exact algebra over the Gaussian rationals",
	Long:              `gocas expands, factors and divides polynomials and solves equations, inequalities and systems exactly.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML options file")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.BoolVar(&jsonOut, "json", false, "print results as JSON")
	pf.IntVar(&maxSolveDepth, "max-solve-depth", 0, "override max_solve_depth")
	pf.IntVar(&maxFactorDegree, "max-factor-degree", 0, "override max_factor_degree")
	pf.IntVar(&maxGroebner, "max-groebner-pairs", 0, "override max_groebner_pairs")
	pf.Float64Var(&tolerance, "tolerance", 0, "override tolerance")

	rootCmd.AddCommand(solveCmd, factorCmd, simplifyCmd, expandCmd, divideCmd, toolCmd, serveCmd)
}

// setup loads options and builds the logger shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(logFormat) {
	case "text":
		logger = slog.New(slog.NewTextHandler(os.Stderr, hopts))
	case "json":
		logger = slog.New(slog.NewJSONHandler(os.Stderr, hopts))
	default:
		return fmt.Errorf("invalid --log-format %q", logFormat)
	}

	opts = gocas.DefaultOptions()
	if configPath != "" {
		loaded, err := gocas.LoadOptions(configPath)
		if err != nil {
			return err
		}
		opts = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("max-solve-depth") {
		opts.MaxSolveDepth = maxSolveDepth
	}
	if flags.Changed("max-factor-degree") {
		opts.MaxFactorDegree = maxFactorDegree
	}
	if flags.Changed("max-groebner-pairs") {
		opts.MaxGroebnerPairs = maxGroebner
	}
	if flags.Changed("tolerance") {
		opts.Tolerance = tolerance
	}
	opts.Logger = logger
	return nil
}

// readInput resolves an argument: "-" is stdin, "@path" a file, anything
// else the JSON text itself.
func readInput(in io.Reader, arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(in)
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(arg[1:])
	}
	return []byte(arg), nil
}

func readNode(cmd *cobra.Command, arg string) (gocas.Node, error) {
	data, err := readInput(cmd.InOrStdin(), arg)
	if err != nil {
		return nil, err
	}
	return gocas.ParseJSON(data)
}

func printNode(cmd *cobra.Command, n gocas.Node) error {
	if jsonOut {
		s, err := gocas.ToJSON(n)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), n.String())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
