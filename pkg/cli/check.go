package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/permclient"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

func newCheckCmd() *cobra.Command {
	var (
		host   string
		token  string
		server string
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "check PERMISSION...",
		Short: "Ask a running server whether a user holds permissions",
		Long: "Calls the check-permission endpoint with the given token. AND and OR print the " +
			"single answer; BULK prints one line per permission. Failures count as denied.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("CADMDT_TOKEN")
			}
			m, err := permissions.ParseMode(mode)
			if err != nil {
				return err
			}

			perms := make([]permissions.Permission, len(args))
			for i, a := range args {
				perms[i] = permissions.Permission(strings.ToUpper(a))
			}

			logger := observability.NewLoggerWithFormat(observability.WarnLevel, observability.FormatText, cmd.ErrOrStderr())
			client := permclient.NewClient(host, token, permclient.WithLogger(logger))
			out := cmd.OutOrStdout()

			if m == permissions.ModeBulk {
				provider := permclient.NewProvider(client, server, perms)
				provider.Load(cmd.Context())
				for _, p := range perms {
					_, _ = fmt.Fprintf(out, "%s\t%t\n", p, provider.Has(p))
				}
				return nil
			}

			gate, err := permclient.NewGate(client, server, perms, m)
			if err != nil {
				return err
			}
			outcome := gate.Check(cmd.Context())
			_, _ = fmt.Fprintln(out, outcome.State)
			if !outcome.ShowContent() {
				return fmt.Errorf("access %s", outcome.State)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (default $CADMDT_TOKEN)")
	cmd.Flags().StringVarP(&server, "server", "s", "", "server slug")
	cmd.Flags().StringVarP(&mode, "mode", "m", "OR", "AND, OR or BULK")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}
