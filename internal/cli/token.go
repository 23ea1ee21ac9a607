package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"afi/internal/platform/jwt"
)

func newTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator token for the dataset upload endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = rootOpts.Config.Auth.TokenTTL
			}
			tokens := jwt.New(rootOpts.Config.Auth.SigningKey, rootOpts.Config.Auth.Issuer)
			token, err := tokens.Issue(subject, ttl)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "issue token", Err: err}
			}
			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"token":      token,
					"subject":    subject,
					"expires_in": int(ttl.Seconds()),
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "operator identity recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
