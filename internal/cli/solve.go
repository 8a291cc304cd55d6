package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tenon/pkg/pipeline"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	sets    []string // variable pins as name=value pairs
	noCache bool     // bypass the solution cache entirely
	refresh bool     // recompute even if a cached solution exists
	asJSON  bool     // emit the solution as JSON instead of a table
}

// solveCommand creates the solve command.
// It loads a manifest, applies any --set pins, resolves the diagram to a
// fixed point, and prints the solved variables.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve <manifest>",
		Short: "Solve a diagram manifest and print variable values",
		Long: `Solve loads a TOML or JSON diagram manifest, applies any --set pins,
and resolves all constraints to a fixed point.

Examples:
  tenon solve box.toml
  tenon solve box.toml --set mid=12 --set left=0
  tenon solve box.toml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, err := parseSets(opts.sets)
			if err != nil {
				return err
			}
			return c.runSolve(cmd, args[0], sets, &opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "pin a variable before solving (name=value, repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the solution cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit the solution as JSON")

	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, manifestPath string, sets map[string]float64, opts *solveOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(cmd.Context(), pipeline.Options{
		ManifestPath: manifestPath,
		Sets:         sets,
		Refresh:      opts.refresh,
		Logger:       c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Solved %d variables under %d constraints",
		result.Stats.VariableCount, result.Stats.ConstraintCount))

	if opts.asJSON {
		return writeSolutionJSON(os.Stdout, result)
	}

	printSolution(result)
	return nil
}

// solutionJSON is the machine-readable shape of a solve result.
type solutionJSON struct {
	Name        string             `json:"name,omitempty"`
	Solution    map[string]float64 `json:"solution"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
	Cached      bool               `json:"cached"`
}

func writeSolutionJSON(w *os.File, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(solutionJSON{
		Name:        result.Definition.Name,
		Solution:    result.Solution,
		Diagnostics: result.Diagnostics,
		Cached:      result.CacheInfo.SolutionHit,
	})
}

// printSolution renders the solved variables as a table, preserving the
// manifest's declaration order for variables the manifest names and sorting
// the rest alphabetically.
func printSolution(result *pipeline.Result) {
	if result.Definition.Name != "" {
		fmt.Println(StyleTitle.Render(result.Definition.Name))
	}

	rows := solutionRows(result)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Variable", "Value", "Strength").
		Rows(rows...)
	fmt.Println(t.Render())

	printStats(result.Stats.VariableCount, result.Stats.ConstraintCount, result.CacheInfo.SolutionHit)

	for _, d := range result.Diagnostics {
		printWarning("%s", d)
	}
}

func solutionRows(result *pipeline.Result) [][]string {
	strengths := make(map[string]string, len(result.Definition.Variables))
	var order []string
	for _, vd := range result.Definition.Variables {
		strengths[vd.Name] = vd.Strength
		order = append(order, vd.Name)
	}

	// Variables produced outside the manifest (equations added via the API)
	// trail the declared ones.
	var extra []string
	for name := range result.Solution {
		if _, ok := strengths[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	rows := make([][]string, 0, len(order))
	for _, name := range order {
		value, ok := result.Solution[name]
		if !ok {
			continue
		}
		strength := strengths[name]
		if strength == "" {
			strength = "normal"
		}
		rows = append(rows, []string{
			StyleValue.Render(name),
			StyleNumber.Render(formatValue(value)),
			StyleDim.Render(strength),
		})
	}
	return rows
}

// formatValue prints a float without trailing zero noise.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// splitPin parses a single name=value pin.
func splitPin(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid pin %q (expected name=value)", s)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid pin %q: %w", s, err)
	}
	return name, value, nil
}
