package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-i2p/boardcfg/lib/board"
	"github.com/go-i2p/boardcfg/lib/embedded"
	"github.com/go-i2p/boardcfg/lib/header"
	"github.com/go-i2p/boardcfg/lib/resolver"
	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) boardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List the boards of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cat.Boards()))
			for _, id := range cat.Boards() {
				b, err := cat.Board(id)
				if err != nil {
					return err
				}
				rows = append(rows, []string{b.ID, b.Name, b.MCU, b.Baseline, fmt.Sprint(b.Override.Len())})
			}
			return printTable(cmd.OutOrStdout(), []string{"BOARD", "NAME", "MCU", "BASELINE", "OVERRIDES"}, rows)
		},
	}
}

func (a *app) resolveCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve BOARD",
		Short: "Resolve a board and print its configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			id := args[0]
			r, err := cat.Resolve(id, a.settings.ResolveOptions()...)
			if err != nil {
				return err
			}
			symbols, err := cat.Symbols(id)
			if err != nil {
				return err
			}

			switch format {
			case "table":
				return a.printResolved(cmd.OutOrStdout(), r, symbols)
			case "yaml":
				return printResolvedYAML(cmd.OutOrStdout(), id, r)
			default:
				return fmt.Errorf("unknown format %q (want table or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or yaml")
	return cmd
}

func (a *app) headerCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "header BOARD",
		Short: "Emit the C header of a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			id := args[0]
			r, err := cat.Resolve(id, a.settings.ResolveOptions()...)
			if err != nil {
				return err
			}
			symbols, err := cat.Symbols(id)
			if err != nil {
				return err
			}
			opts := a.settings.HeaderOptions(symbols)

			if out == "" {
				return header.Render(cmd.OutOrStdout(), id, r, opts)
			}
			_, err = header.WriteFile(out, id, r, opts)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the header to this file instead of stdout")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve every board and report failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			results, err := cat.ResolveAll(cmd.Context(), a.settings.ResolveOptions()...)

			rows := make([][]string, 0, len(cat.Boards()))
			for _, id := range cat.Boards() {
				if r, ok := results[id]; ok {
					rows = append(rows, []string{id, "ok", r.DigestHex()[:16]})
				} else {
					rows = append(rows, []string{id, "FAILED", ""})
				}
			}
			if perr := printTable(cmd.OutOrStdout(), []string{"BOARD", "STATUS", "DIGEST"}, rows); perr != nil {
				return perr
			}
			if err != nil {
				return fmt.Errorf("%d of %d boards failed:\n%w", len(cat.Boards())-len(results), len(cat.Boards()), err)
			}
			return nil
		},
	}
}

func (a *app) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write the header of every board to the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

type rendered struct {
	id   string
	r    *resolver.Resolved
	opts header.Options
}

// generate resolves and renders every board before writing any file, so a
// failing board leaves the output directory untouched.
func (a *app) generate(ctx context.Context, w io.Writer) error {
	cat, err := a.catalog()
	if err != nil {
		return err
	}
	results, err := cat.ResolveAll(ctx, a.settings.ResolveOptions()...)
	if err != nil {
		return fmt.Errorf("nothing written: %w", err)
	}

	var pending []rendered
	var errs []error
	for _, id := range cat.Boards() {
		symbols, err := cat.Symbols(id)
		if err != nil {
			return err
		}
		opts := a.settings.HeaderOptions(symbols)
		if _, err := header.Bytes(id, results[id], opts); err != nil {
			errs = append(errs, fmt.Errorf("board %s: %w", id, err))
			continue
		}
		pending = append(pending, rendered{id: id, r: results[id], opts: opts})
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("nothing written: %w", err)
	}

	var written int
	for _, p := range pending {
		path := filepath.Join(a.settings.Header.OutDir, p.id, HeaderFileName)
		changed, err := header.WriteFile(path, p.id, p.r, p.opts)
		if err != nil {
			return err
		}
		if changed {
			written++
			fmt.Fprintf(w, "wrote %s\n", path)
		}
	}

	log.WithFields(logger.Fields{
		"at":        "cli.generate",
		"reason":    "generated",
		"boards":    len(pending),
		"written":   written,
		"unchanged": len(pending) - written,
	}).Info("headers generated")
	fmt.Fprintf(w, "%d boards, %d headers written, %d unchanged\n", len(pending), written, len(pending)-written)
	return nil
}

func (a *app) initCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Copy the built-in catalog into DIR as a starting point",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			written, err := embedded.Extract(dir, force)
			if err != nil {
				return err
			}
			for _, f := range written {
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, f))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func printResolvedYAML(w io.Writer, id string, r *resolver.Resolved) error {
	str := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		str("board"), str(id),
		str("digest"), str(r.DigestHex()),
		str("options"), board.EncodeOptions(r.Options()),
	}}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
