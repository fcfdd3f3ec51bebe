package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/auth"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the OpenAI API key used by the openai translator",
		Long: `Manage the OpenAI API key used when translation.provider is openai.

The key is stored in credentials.json next to the config file (0600).
OPENAI_API_KEY, when set, takes precedence over the stored key.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login [key]",
			Short: "Store an API key (read from stdin when not given)",
			Args:  usageArgs(cobra.MaximumNArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				key := ""
				if len(args) == 1 {
					key = args[0]
				} else {
					fmt.Fprint(cmd.OutOrStdout(), "API key: ")
					line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					key = strings.TrimSpace(line)
				}
				if key == "" {
					return usagef("auth login: empty key")
				}
				creds, err := a.credentials()
				if err != nil {
					return err
				}
				if err := creds.Set(key); err != nil {
					return fmt.Errorf("auth login: %w", err)
				}
				ok(cmd.OutOrStdout(), "key saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Delete the stored API key",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				creds, err := a.credentials()
				if err != nil {
					return err
				}
				if err := creds.Delete(); err != nil {
					return fmt.Errorf("auth logout: %w", err)
				}
				ok(cmd.OutOrStdout(), "key removed")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the API key comes from",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				creds, err := a.credentials()
				if err != nil {
					return err
				}
				info, err := creds.Get()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if info == nil {
					fmt.Fprintln(w, mutedStyle.Render("not logged in"))
					return nil
				}
				line := fmt.Sprintf("key %s from %s", info.Masked(), info.Source)
				if !info.CreatedAt.IsZero() {
					line += ", saved " + info.CreatedAt.Format("2006-01-02")
				}
				ok(w, line)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) credentials() (*auth.Credentials, error) {
	dir, err := a.credentialsDir()
	if err != nil {
		return nil, err
	}
	return auth.New(dir), nil
}
