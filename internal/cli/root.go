package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/tui"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "shoplist",
		Short: "A categorized, translated shopping list",
		Long: `shoplist keeps a shopping list grouped by category.

Items are typed the way you would say them ("2kg rice", "three apples"),
sorted into a category by keyword and translated into a target language.
Run without a subcommand to open the interactive list.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.shoplist/config.yaml)")
	pf.StringVar(&a.dataPath, "data", "", "data file (default shoplist.json or shoplist.db)")
	pf.StringVar(&a.lang, "lang", "", "target language code, e.g. es")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newExportCmd(a),
		newDoneCmd(a),
		newRemoveCmd(a),
		newQtyCmd(a),
		newRenameCmd(a),
		newMoveCmd(a),
		newCategoryCmd(a),
		newTranslateCmd(a),
		newParseCmd(a),
		newClearCmd(a),
		newResetCmd(a),
		newAuthCmd(a),
		&cobra.Command{
			Use:   "ui",
			Short: "Open the interactive list",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.runTUI(cmd)
			},
		},
	)
	return root
}

func (a *app) runTUI(cmd *cobra.Command) error {
	svc, err := a.open(cmd.Context(), true)
	if err != nil {
		return err
	}
	opt := tui.Options{
		Theme:  a.cfg.UI.Theme,
		Logger: a.log,
	}
	if a.cfg.Data.Backend == "json" {
		opt.WatchPath = a.cfg.DataPath()
	}
	return tui.Run(cmd.Context(), svc, opt)
}

// usageArgs reports argument validation failures as usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return &usageError{err: err, hint: "see `" + cmd.CommandPath() + " --help`"}
		}
		return nil
	}
}

// resolve turns a user-facing 1-based index into an item reference.
func (a *app) resolve(svc *shoplist.Service, verb, arg string) (shoplist.Ref, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return shoplist.Ref{}, usagef("%s: not a number: %s", verb, arg)
	}
	ref, err := svc.Resolve(n)
	if err != nil {
		return shoplist.Ref{}, &usageError{err: err, hint: "run `shoplist ls` to see valid indexes"}
	}
	return ref, nil
}

// confirm asks a yes/no question on the command's streams.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(cmd.OutOrStdout())
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
