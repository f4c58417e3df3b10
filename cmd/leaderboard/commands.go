package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/leaderboard/internal/config"
	"github.com/jask/leaderboard/internal/database"
	"github.com/jask/leaderboard/internal/database/repository"
	"github.com/jask/leaderboard/internal/leaderboard"
)

func (c *cli) listCmd() *cobra.Command {
	var q leaderboard.Query
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print entries, filtered, searched and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.Category != "" && !leaderboard.IsCategory(q.Category) {
				return fmt.Errorf("%w: %q (one of: %s)", leaderboard.ErrUnknownCategory, q.Category, strings.Join(leaderboard.Categories, ", "))
			}
			if !cmd.Flags().Changed("sort") {
				q.SortBy = c.cfg.UI.DefaultSort
			}
			store, done, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			all := store.Entries()
			rows := leaderboard.Derive(all, q)
			counts := leaderboard.LeaderCounts(all)
			loc := c.location()

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "Date", "Category", "Leader", "Runner-up", "Notes")
			for _, e := range rows {
				leader := e.Leader
				if em := leaderboard.EmphasisFor(counts[e.Leader]); em != leaderboard.EmphasisNeutral {
					leader += " (" + em.String() + ")"
				}
				t.Row(e.ID, e.Date.In(loc).Format(c.cfg.UI.DateFormat), e.Category, leader, e.RunnerUp, e.Notes)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d entries\n", len(rows), len(all))
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", "", "only this category")
	cmd.Flags().StringVar(&q.Search, "search", "", "case-insensitive text in leader, runner-up or notes")
	cmd.Flags().StringVar(&q.SortBy, "sort", leaderboard.SortByDate, "date, category or leader")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var date, category, leader, runnerUp, notes string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an entry and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, done, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			e, err := store.AddEntry(ctx)
			if err != nil {
				return err
			}
			updates := []struct {
				field leaderboard.Field
				value string
				set   bool
			}{
				{leaderboard.FieldDate, date, date != ""},
				{leaderboard.FieldCategory, category, category != ""},
				{leaderboard.FieldLeader, leader, leader != ""},
				{leaderboard.FieldRunnerUp, runnerUp, runnerUp != ""},
				{leaderboard.FieldNotes, notes, notes != ""},
			}
			for _, u := range updates {
				if !u.set {
					continue
				}
				value, err := c.fieldValue(u.field, u.value)
				if err == nil {
					err = store.UpdateField(ctx, e.ID, u.field, value)
				}
				if err != nil {
					return fmt.Errorf("entry %s added but %s not set: %w", e.ID, u.field, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "ISO-8601 date (default now)")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	cmd.Flags().StringVar(&leader, "leader", "", "leading tool")
	cmd.Flags().StringVar(&runnerUp, "runner-up", "", "runner-up tool")
	cmd.Flags().StringVar(&notes, "notes", "", "free text")
	return cmd
}

// fieldValue reads zone-less dates in the display timezone, matching how list
// prints them.
func (c *cli) fieldValue(field leaderboard.Field, value string) (string, error) {
	if field != leaderboard.FieldDate {
		return value, nil
	}
	t, err := leaderboard.ParseDateIn(value, c.location())
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339Nano), nil
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <field> <value>",
		Short: "Set one field (date, category, leader, runnerUp, notes) of an entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := leaderboard.ParseField(args[1])
			if err != nil {
				return err
			}
			value, err := c.fieldValue(field, args[2])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, done, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			if _, ok := store.Entry(args[0]); !ok {
				return fmt.Errorf("entry %s not found", args[0])
			}
			return store.UpdateField(ctx, args[0], field, value)
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, done, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			if _, ok := store.Entry(args[0]); !ok {
				return fmt.Errorf("entry %s not found", args[0])
			}
			return store.DeleteEntry(ctx, args[0])
		},
	}
}

func (c *cli) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List known tool names in sorted order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			for _, name := range store.SortedTools() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write entries and tools as JSON (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if len(args) == 0 {
				return store.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := store.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace entries (and tools, if present) from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			store, done, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := store.Import(ctx, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries, %d tools\n", len(store.Entries()), len(store.Tools()))
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write configuration",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, c.cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the database, its schema version and stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, err := database.SchemaVersion(c.cfg.Database.Path)
			if err != nil {
				return err
			}
			items, err := repository.NewKVRepo(db).List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database: %s\n", c.cfg.Database.Path)
			fmt.Fprintf(out, "schema:   v%d", version)
			if dirty {
				fmt.Fprint(out, " (dirty)")
			}
			fmt.Fprintln(out)
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Key", "Bytes", "Updated")
			for _, it := range items {
				t.Row(it.Key, fmt.Sprint(len(it.Value)), it.UpdatedAt.In(c.location()).Format(time.DateTime))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete stored entries and tools; the next run starts from the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes every entry; pass --yes to confirm")
			}
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewKVRepo(db)
			for _, key := range []string{leaderboard.KeyEntries, leaderboard.KeyTools} {
				if err := repo.Delete(cmd.Context(), key); err != nil {
					return fmt.Errorf("delete %s: %w", key, err)
				}
			}
			c.logger.Info("store reset", zap.String("path", c.cfg.Database.Path))
			fmt.Fprintln(cmd.OutOrStdout(), "reset", c.cfg.Database.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
