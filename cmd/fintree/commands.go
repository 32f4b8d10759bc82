package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jask/fintree/internal/database"
	"github.com/jask/fintree/internal/demo"
	"github.com/jask/fintree/internal/hierarchy"
	"github.com/jask/fintree/internal/service"
)

// treeRow is one exported line of `fintree tree`.
type treeRow struct {
	ID          int64    `json:"id" yaml:"id"`
	ParentID    *int64   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Depth       int      `json:"depth" yaml:"depth"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Path        []string `json:"path" yaml:"path"`
}

func kindArg(s string) (service.Kind, error) {
	k, err := service.ParseKind(s)
	if err != nil {
		return "", fmt.Errorf("%w (want one of %s)", err, kindList())
	}
	return k, nil
}

func kindList() string {
	var names []string
	for _, k := range service.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func newTreeCmd(g *globalFlags) *cobra.Command {
	var (
		query     string
		expandAll bool
		format    string
	)
	cmd := &cobra.Command{
		Use:   "tree <kind>",
		Short: "Print a hierarchy the way the picker shows it",
		Long: `Print the visible rows of a hierarchy.

Kinds: accounts, account-categories, transaction-categories.

Examples:
  fintree tree transaction-categories --expand-all
  fintree tree accounts --query bank --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			user, err := e.userID(ctx)
			if err != nil {
				return err
			}
			items, err := e.svc.Hierarchies.Entities(ctx, user, kind)
			if err != nil {
				return err
			}
			p := hierarchy.New(items, hierarchy.EntityAccessors(), hierarchy.Options[hierarchy.Entity]{Logger: e.logger})
			if expandAll {
				p.ExpandAll()
			}
			p.SetQuery(query)
			if len(p.Rows()) == 0 && query != "" {
				msg := "no matches"
				if s := p.Suggestions(3); len(s) > 0 {
					msg += "; did you mean " + strings.Join(s, ", ") + "?"
				}
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			return writeTree(cmd.OutOrStdout(), p, format)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only show matches and their ancestors")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "expand every node")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func writeTree(w io.Writer, p *hierarchy.Picker[hierarchy.Entity], format string) error {
	f := p.Forest()
	rows := make([]treeRow, 0, len(p.Rows()))
	for _, r := range p.Rows() {
		tr := treeRow{
			ID:          r.Node.ID,
			Depth:       r.Depth,
			Name:        r.Node.Item.Name,
			Description: r.Node.Item.Description,
			Path:        f.Path(r.Node.ID),
		}
		if parent, ok := f.Parent(r.Node.ID); ok {
			tr.ParentID = hierarchy.Ptr(parent)
		}
		rows = append(rows, tr)
	}

	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		for _, r := range rows {
			line := strings.Repeat("  ", r.Depth) + r.Name
			if r.Description != "" {
				line += "  (" + r.Description + ")"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newReparentCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reparent <kind> <id> <parent-id|root>",
		Short: "Move an entity under another one, or to the top level",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			var parent *int64
			if !strings.EqualFold(args[2], "root") {
				pid, err := parseID(args[2])
				if err != nil {
					return err
				}
				parent = &pid
			}

			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := cmd.Context()
			user, err := e.userID(ctx)
			if err != nil {
				return err
			}
			if err := e.svc.Hierarchies.Reparent(ctx, user, kind, id, parent); err != nil {
				return err
			}
			if parent == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "moved %d to the top level\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "moved %d under %d\n", id, *parent)
			}
			return nil
		},
	}
}

func newImportCmd(g *globalFlags) *cobra.Command {
	var parentFlag int64
	cmd := &cobra.Command{
		Use:   "import <kind> <file.toml>",
		Short: "Import a hierarchy from a TOML file",
		Long: `Import a hierarchy from a TOML file. Parents are created before their
children and the whole file is rejected if any node is invalid.

  [[node]]
  name = "Food"
    [[node.children]]
    name = "Groceries"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := cmd.Context()
			user, err := e.userID(ctx)
			if err != nil {
				return err
			}
			var parent *int64
			if parentFlag > 0 {
				parent = &parentFlag
			}
			n, err := e.svc.ImportTree(ctx, user, kind, f, parent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s\n", n, kind)
			return nil
		},
	}
	cmd.Flags().Int64Var(&parentFlag, "parent", 0, "hang imported roots under this id")
	return cmd
}

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer e.Close()
			v, dirty, err := database.SchemaVersion(e.cfg.Database.Path)
			if err != nil {
				return err
			}
			state := "clean"
			if dirty {
				state = "dirty"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
			return nil
		},
	}
}

func newResetCmd(g *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every row owned by the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := cmd.Context()
			user, err := e.userID(ctx)
			if err != nil {
				return err
			}
			if err := e.svc.Maintenance.Reset(ctx, user); err != nil {
				return err
			}
			e.logger.Warn("user data reset", "user", user)
			fmt.Fprintln(cmd.OutOrStdout(), "all data removed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newDemoCmd(g *globalFlags) *cobra.Command {
	var (
		count int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Fill the book with sample accounts and transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := cmd.Context()
			user, err := e.userID(ctx)
			if err != nil {
				return err
			}
			if err := database.SeedDefaults(ctx, e.db, user); err != nil {
				return fmt.Errorf("seed defaults: %w", err)
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			res, err := demo.Seed(ctx, e.svc, user, rand.New(rand.NewSource(seed)), count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d accounts and %d transactions\n", res.Accounts, res.Transactions)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "transactions", "n", 20, "number of transactions")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
