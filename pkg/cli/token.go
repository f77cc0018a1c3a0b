package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/cadmdt/pkg/auth"
	"github.com/platinummonkey/cadmdt/pkg/config"
	"github.com/platinummonkey/cadmdt/pkg/storage"
)

func newTokenCmd() *cobra.Command {
	var (
		userID int64
		name   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate an API token",
		Long: "Without --user-id, prints a fresh token with the hash to seed api_tokens by hand. " +
			"With --user-id, stores the token in the configured database.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if userID == 0 {
				token, hash, prefix, err := auth.NewTokenGenerator().GenerateToken()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "token:  %s\nhash:   %s\nprefix: %s\n", token, hash, prefix)
				return nil
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := storage.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer db.Close()

			var expiresAt *time.Time
			if ttl > 0 {
				t := time.Now().Add(ttl).UTC()
				expiresAt = &t
			}

			apiToken, token, err := auth.NewTokenStore(db).CreateToken(cmd.Context(), userID, name, expiresAt)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "token:  %s\nid:     %d\nprefix: %s\n", token, apiToken.ID, apiToken.TokenPrefix)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "store the token for this user")
	cmd.Flags().StringVar(&name, "name", "cli", "token name")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (0 = no expiry)")
	return cmd
}
