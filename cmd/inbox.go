package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInboxCommand creates the inbox command
func NewInboxCommand(rootOpts *RootOptions) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:          "inbox <slug>",
		Short:        "List replies to an anonymous link, newest first",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			db, anon, err := openAnonymous(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			inbox, err := anon.Inbox(cmd.Context(), args[0], token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(inbox.Responses) == 0 {
				fmt.Fprintln(out, "No messages yet")
				return nil
			}
			for _, r := range inbox.Responses {
				fmt.Fprintf(out, "[%s] %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Response)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "owner token from the inbox link")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}
