package cli

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/export"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/translate"
	"github.com/idilsaglam/shoplist/internal/ui"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add an item, e.g. \"2kg rice\" or \"three apples\"",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			res, err := svc.Add(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, shoplist.ErrEmptyName) {
				return usagef("add: no item name in %q", strings.Join(args, " "))
			}
			if err != nil {
				return err
			}
			it := res.Item
			msg := fmt.Sprintf("added %s × %s", model.FormatQuantity(it.Quantity), it.Name)
			if it.Translation != it.Name {
				msg += " (" + it.Translation + ")"
			}
			ok(cmd.OutOrStdout(), msg+" → "+res.Category)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var pending, markdown bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show the list",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			snap := svc.Snapshot()
			if markdown {
				out, err := export.Render(export.Markdown(snap, export.Options{PendingOnly: pending}), 80)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			ui.Panel(cmd.OutOrStdout(), ui.ListLines(snap, ui.ListOptions{
				PendingOnly: pending,
				Lang:        svc.TargetLang(),
			}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "hide purchased items")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render as a Markdown checklist")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out, title string
	var pending bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the list as a Markdown checklist",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			md := export.Markdown(svc.Snapshot(), export.Options{Title: title, PendingOnly: pending})
			if out == "" || out == "-" {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			ok(cmd.OutOrStdout(), "exported to "+out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().BoolVar(&pending, "pending", false, "leave out purchased items")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle purchased for the item at a 1-based index",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			ref, err := a.resolve(svc, "done", args[0])
			if err != nil {
				return err
			}
			v, err := svc.Toggle(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if v {
				ok(cmd.OutOrStdout(), "purchased")
			} else {
				ok(cmd.OutOrStdout(), "back on the list")
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the item at a 1-based index",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			ref, err := a.resolve(svc, "rm", args[0])
			if err != nil {
				return err
			}
			it, _ := svc.Find(ref)
			if err := svc.Delete(cmd.Context(), ref); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "removed "+it.Name)
			return nil
		},
	}
}

func newQtyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <index> <quantity>",
		Short: "Set the quantity (anything below 1 or not a number becomes 1)",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			ref, err := a.resolve(svc, "qty", args[0])
			if err != nil {
				return err
			}
			v, err := svc.SetQuantityText(cmd.Context(), ref, args[1])
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "quantity "+model.FormatQuantity(v))
			return nil
		},
	}
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <index> <name...>",
		Short: "Rename an item; it is recategorized and retranslated",
		Args:  usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			ref, err := a.resolve(svc, "rename", args[0])
			if err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if name == "" {
				return usagef("rename: empty name")
			}
			cat, err := svc.RenameItem(cmd.Context(), ref, name)
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "renamed to "+name+" → "+cat)
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <index> <category> [position]",
		Short: "Move an item into a category at a 1-based position (default: end)",
		Args:  usageArgs(cobra.RangeArgs(2, 3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			ref, err := a.resolve(svc, "mv", args[0])
			if err != nil {
				return err
			}
			index := math.MaxInt
			if len(args) == 3 {
				pos, err := strconv.Atoi(args[2])
				if err != nil || pos < 1 {
					return usagef("mv: bad position: %s", args[2])
				}
				index = pos - 1
			}
			target := strings.TrimSpace(args[1])
			if target == "" {
				return usagef("mv: empty category")
			}
			if err := svc.Move(cmd.Context(), ref, target, index); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "moved to "+target)
			return nil
		},
	}
}

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a category, merging into <new> if it exists",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			err = svc.RenameCategory(cmd.Context(), args[0], args[1])
			switch {
			case shoplist.IsNotFound(err):
				return &usageError{err: fmt.Errorf("no category %q", args[0]), hint: "run `shoplist ls` to see categories"}
			case errors.Is(err, shoplist.ErrEmptyName):
				return usagef("category rename: empty name")
			case err != nil:
				return err
			}
			ok(cmd.OutOrStdout(), fmt.Sprintf("category %s → %s", args[0], strings.TrimSpace(args[1])))
			return nil
		},
	})
	return cmd
}

func newTranslateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [lang]",
		Short: "Retranslate every item (into lang, or the configured language)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			lang := svc.TargetLang()
			if len(args) == 1 {
				lang = strings.ToLower(strings.TrimSpace(args[0]))
			}
			name, known := translate.LanguageName(lang)
			if !known {
				return &usageError{
					err:  fmt.Errorf("translate: unknown language %q", lang),
					hint: "one of " + translate.SourceLang + ", " + strings.Join(translate.LanguageCodes(), ", "),
				}
			}
			if err := svc.UpdateTranslations(cmd.Context(), lang); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), fmt.Sprintf("translated %d items into %s", svc.Len(), name))
			return nil
		},
	}
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text...>",
		Short: "Show how input would be read, without adding it",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			p, m := svc.Preview(strings.Join(args, " "))
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %q\n", accentStyle.Render("name:    "), p.ItemName)
			fmt.Fprintf(w, "%s %s\n", accentStyle.Render("quantity:"), model.FormatQuantity(p.Quantity))
			fmt.Fprintf(w, "%s %s %s\n", accentStyle.Render("category:"), m.Category, m.Icon)
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every item",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Remove all %d items?", svc.Len())) {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("cancelled"))
				return nil
			}
			if err := svc.ClearItems(cmd.Context()); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "list cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all saved state, including unreadable data",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, "Wipe "+cfg.DataPath()+"?") {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("cancelled"))
				return nil
			}
			// not loaded first, so unreadable data can be wiped too
			svc, err := a.build(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := svc.Reset(cmd.Context()); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "state wiped")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
