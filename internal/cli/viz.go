package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tenon/pkg/pipeline"
)

// vizOpts holds the command-line flags for the viz command.
type vizOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: dot, svg, png
	detailed bool     // include values and strengths in node labels
	sets     []string // variable pins as name=value pairs
	noCache  bool     // bypass solution and artifact caches
	refresh  bool     // recompute even if cached
}

// vizCommand creates the viz command for rendering constraint networks.
// The diagram is solved first so labels and the weakest-variable highlight
// reflect the resolved state.
func (c *CLI) vizCommand() *cobra.Command {
	var formatsStr string
	var opts vizOpts

	cmd := &cobra.Command{
		Use:   "viz <manifest>",
		Short: "Render a diagram's constraint network",
		Long: `Viz solves a diagram manifest and renders its constraint network.

Variables are drawn as ellipses and constraints as boxes; each constraint's
current weakest variable is highlighted in red.

Examples:
  tenon viz box.toml                      # box.svg
  tenon viz box.toml -f dot,png -o out    # out.dot, out.png
  tenon viz box.toml --detailed --set mid=12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			sets, err := parseSets(opts.sets)
			if err != nil {
				return err
			}
			return c.runViz(cmd, args[0], sets, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show values and strengths in labels")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "pin a variable before solving (name=value, repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass caches")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runViz(cmd *cobra.Command, manifestPath string, sets map[string]float64, opts *vizOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(cmd.Context(), "Solving and rendering")
	spinner.Start()
	result, err := runner.Execute(cmd.Context(), pipeline.Options{
		ManifestPath: manifestPath,
		Sets:         sets,
		Refresh:      opts.refresh,
		Formats:      opts.formats,
		Detailed:     opts.detailed,
		Logger:       c.Logger,
	})
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	for _, format := range opts.formats {
		path := artifactPath(opts.output, manifestPath, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return err
		}
		printFile(path)
	}

	printStats(result.Stats.VariableCount, result.Stats.ConstraintCount,
		result.CacheInfo.SolutionHit && result.CacheInfo.RenderHit)
	for _, d := range result.Diagnostics {
		printWarning("%s", d)
	}
	printNextStep("Inspect constraints", fmt.Sprintf("tenon inspect %s", manifestPath))
	return nil
}

// artifactPath derives the output path for one rendered format.
// With multiple formats the output (or the manifest name) becomes a base
// path and each format supplies its extension.
func artifactPath(output, input, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + format
}
