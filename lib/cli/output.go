package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-i2p/boardcfg/lib/header"
	"github.com/go-i2p/boardcfg/lib/option"
	"github.com/go-i2p/boardcfg/lib/resolver"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	overrideStyle = cellStyle.Foreground(lipgloss.Color("214"))
)

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printTable(w io.Writer, headers []string, rows [][]string) error {
	_, err := fmt.Fprintln(w, newTable(headers, rows).Render())
	return err
}

// printResolved prints one row per option with its provenance and the
// macro it is emitted under. Rows taken from the override are highlighted.
func (a *app) printResolved(w io.Writer, r *resolver.Resolved, symbols map[string]string) error {
	opts := r.Options()
	rows := make([][]string, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []string{
			o.Name,
			o.Value.String(),
			o.Value.Kind().String(),
			o.Source.String(),
			header.MacroName(o.Name, symbols, a.settings.Header.Prefix),
		})
	}

	t := newTable([]string{"OPTION", "VALUE", "KIND", "SOURCE", "MACRO"}, rows).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case opts[row].Source == option.SourceOverride:
				return overrideStyle
			default:
				return cellStyle
			}
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d options, %d overridden, digest %s\n", r.Len(), len(r.Overridden()), r.DigestHex())
	return err
}
