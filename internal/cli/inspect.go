package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/solver"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listWeakestStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// inspectCommand creates the inspect command, an interactive browser for a
// solved diagram's constraints.
func (c *CLI) inspectCommand() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Interactively browse a solved diagram's constraints",
		Long: `Inspect solves a diagram manifest and opens an interactive list of its
constraints. Selecting a constraint shows its variables, their solved
values and strengths, and which variable the solver currently considers
weakest (the one the constraint would modify next).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pins, err := parseSets(sets)
			if err != nil {
				return err
			}
			return c.runInspect(args[0], pins)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "pin a variable before solving (name=value, repeatable)")

	return cmd
}

func (c *CLI) runInspect(manifestPath string, sets map[string]float64) error {
	def, err := diagram.ParseFile(manifestPath)
	if err != nil {
		return err
	}
	d, err := diagram.Build(def)
	if err != nil {
		return err
	}
	for name, value := range sets {
		if err := d.SetValue(name, value); err != nil {
			return err
		}
	}
	if err := d.Resolve(); err != nil {
		// Show the partial state anyway; the browser marks the problem.
		printWarning("%v", err)
	}

	model := newConstraintListModel(d)
	if len(model.Rows) == 0 {
		printInfo("Diagram %q has no constraints", def.Name)
		return nil
	}

	_, err = tea.NewProgram(model).Run()
	return err
}

// =============================================================================
// ConstraintListModel - Interactive constraint browsing
// =============================================================================

// constraintRow is one entry in the browser: a constraint plus the
// name-resolved view of its variables.
type constraintRow struct {
	Kind    string
	Label   string
	Vars    []varView
	Weakest string
}

// varView is a variable as displayed in the detail pane.
type varView struct {
	Name     string
	Value    float64
	Strength solver.Strength
	Weakest  bool
}

// ConstraintListModel is the bubbletea model for constraint browsing.
type ConstraintListModel struct {
	Title  string
	Rows   []constraintRow
	Cursor int
	Height int
	Offset int
}

// newConstraintListModel builds the browser state from a solved diagram.
func newConstraintListModel(d *diagram.Diagram) ConstraintListModel {
	names := variableNamesByPointer(d)

	rows := make([]constraintRow, 0, len(d.Constraints()))
	for _, bc := range d.Constraints() {
		weakest := bc.Constraint.Weakest()
		row := constraintRow{
			Kind:    bc.Def.Kind,
			Label:   constraintLabel(bc.Def),
			Weakest: names[weakest],
		}
		for _, v := range bc.Constraint.Variables() {
			row.Vars = append(row.Vars, varView{
				Name:     names[v],
				Value:    v.Value(),
				Strength: v.Strength(),
				Weakest:  v == weakest,
			})
		}
		rows = append(rows, row)
	}

	return ConstraintListModel{
		Title:  d.Definition().Name,
		Rows:   rows,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

// variableNamesByPointer inverts the diagram's name lookup so constraint
// variables can be labeled. Variables without a manifest name (line point
// coordinates bound through equations, for instance) render as "?".
func variableNamesByPointer(d *diagram.Diagram) map[*solver.Variable]string {
	names := make(map[*solver.Variable]string)
	for _, name := range d.VariableNames() {
		if v, err := d.Variable(name); err == nil {
			names[v] = name
		}
	}
	return names
}

func (m ConstraintListModel) Init() tea.Cmd {
	return nil
}

func (m ConstraintListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ConstraintListModel) View() string {
	var b strings.Builder

	title := "Constraints"
	if m.Title != "" {
		title = m.Title + " · Constraints"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(fmt.Sprintf("%-9s", row.Kind)) + " " + listDimStyle.Render(row.Label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())
	return b.String()
}

// detailView renders the variable table for the selected constraint.
func (m ConstraintListModel) detailView() string {
	if m.Cursor >= len(m.Rows) {
		return ""
	}
	row := m.Rows[m.Cursor]

	rows := [][]string{}
	for _, v := range row.Vars {
		marker := ""
		nameStyle := listNormalStyle
		if v.Weakest {
			marker = "weakest"
			nameStyle = listWeakestStyle
		}
		rows = append(rows, []string{
			nameStyle.Render(displayName(v.Name)),
			StyleNumber.Render(formatValue(v.Value)),
			listDimStyle.Render(v.Strength.String()),
			listWeakestStyle.Render(marker),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Variable", "Value", "Strength", "").
		Rows(rows...)
	return t.Render()
}

func displayName(name string) string {
	if name == "" {
		return "?"
	}
	return name
}

// constraintLabel renders a one-line summary of a constraint declaration.
func constraintLabel(def diagram.ConstraintDef) string {
	switch def.Kind {
	case diagram.KindEquals:
		return fmt.Sprintf("%s = %s", def.A, def.B)
	case diagram.KindCenter:
		return fmt.Sprintf("%s centers %s..%s", def.Center, def.A, def.B)
	case diagram.KindLessThan:
		if def.Delta != 0 {
			return fmt.Sprintf("%s + %g ≤ %s", def.Smaller, def.Delta, def.Bigger)
		}
		return fmt.Sprintf("%s ≤ %s", def.Smaller, def.Bigger)
	case diagram.KindBalance:
		label := fmt.Sprintf("%s between %s and %s", def.V, def.B1, def.B2)
		if def.Ratio != nil {
			label += fmt.Sprintf(" (ratio %g)", *def.Ratio)
		}
		return label
	case diagram.KindLine:
		return fmt.Sprintf("(%s) on (%s)–(%s)",
			strings.Join(def.Point, ", "),
			strings.Join(def.Start, ", "),
			strings.Join(def.End, ", "))
	default:
		return def.Kind
	}
}
