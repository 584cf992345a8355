package cli

import (
	"bufio"
	"datatrans/handlers"
	"datatrans/version"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) makeMessagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "make-messages",
		Short: "Create missing translations for every registered field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()

			created, err := e.svc.Translations.MakeMessages(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d translations across %d models\n", created, e.reg.Len())
			return nil
		},
	}
}

func hashTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Print the bcrypt hash to use as translator_token_hash",
		Long:  "Print the bcrypt hash of a translator token. The token is read from stdin when not given as an argument.",
		Args:  cobra.MaximumNArgs(1),
		// Needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return errors.New("empty token")
			}

			hash, err := handlers.HashToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print build information",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetBuildInfo())
			return nil
		},
	}
}
