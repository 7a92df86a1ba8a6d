package cmd

import (
	"context"
	"fmt"

	"emo-pages-backend/internal/config"
	"emo-pages-backend/internal/database"
	"emo-pages-backend/internal/metrics"
	"emo-pages-backend/internal/services"

	"github.com/spf13/cobra"
)

// NewAnonymousCommand creates the anonymous command
func NewAnonymousCommand(rootOpts *RootOptions) *cobra.Command {
	var copyLink string

	cmd := &cobra.Command{
		Use:   "anonymous",
		Short: "Create an anonymous message link",
		Long: `Create an anonymous message link and print both URLs.

The public link is for sharing. The inbox link carries the owner token
and is printed only once.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch copyLink {
			case "", "public", "inbox":
			default:
				return fmt.Errorf("invalid --copy %q: must be public or inbox", copyLink)
			}

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			db, anon, err := openAnonymous(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			link, err := anon.Create(cmd.Context())
			if err != nil {
				return err
			}

			links := services.NewLinks(cfg.Server.PublicURL).ForAnonymous(link.Page.Slug, link.OwnerToken)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "public: %s\n", links.Public)
			fmt.Fprintf(out, "inbox:  %s\n", links.Inbox)

			if copyLink == "" {
				return nil
			}
			value := links.Public
			if copyLink == "inbox" {
				value = links.Inbox
			}
			feedback := services.NewCopyFeedback(newOSC52Clipboard(cmd.ErrOrStderr()), nil)
			if feedback.Copy(cmd.Context(), copyLink, value) {
				fmt.Fprintf(out, "Copied %s link!\n", copyLink)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&copyLink, "copy", "", "copy a link to the clipboard (public|inbox)")

	return cmd
}

// openAnonymous opens the store and builds the anonymous service on top of it
func openAnonymous(ctx context.Context, cfg *config.Config) (*database.DB, *services.AnonymousService, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	pages := services.NewPageService(db.Store, metrics.New())
	return db, services.NewAnonymousService(pages), nil
}
