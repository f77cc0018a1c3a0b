package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/config"
	"github.com/platinummonkey/cadmdt/pkg/orgs"
	"github.com/platinummonkey/cadmdt/pkg/storage"
)

func newAuditCmd() *cobra.Command {
	var (
		server string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent access denials for a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := storage.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer db.Close()

			org, err := orgs.NewSQLService(db).GetOrganizationBySlug(cmd.Context(), server)
			if err != nil {
				return err
			}
			store, err := audit.NewDBLogger(db)
			if err != nil {
				return err
			}
			events, err := store.Recent(cmd.Context(), org.ID, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tEVENT\tDECISION\tUSER\tPATH")
			for _, e := range events {
				user := "-"
				if e.UserID != nil {
					user = fmt.Sprint(*e.UserID)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.UTC().Format(time.RFC3339), e.EventType, e.Decision, user, e.Path)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "server slug")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of events")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}
