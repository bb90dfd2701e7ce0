package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cloudslate/cloudslate/internal/app"
	"github.com/cloudslate/cloudslate/internal/client"
	"github.com/cloudslate/cloudslate/internal/config"
	"github.com/cloudslate/cloudslate/internal/posts"
)

type cli struct {
	cfg    *config.Config
	logger *slog.Logger
	// client is built on first use unless a test sets it.
	client *app.Client
	asJSON bool
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "cloudslate",
		Short:         "Read and manage CloudSlate blog posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if c.client != nil {
				return nil
			}
			built, err := app.NewClient(c.cfg, c.logger)
			if err != nil {
				return err
			}
			c.client = built
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")
	flags.StringVar(&c.cfg.Client.APIURL, "api-url", c.cfg.Client.APIURL, "storage API base URL")
	flags.StringVar(&c.cfg.Client.APIToken, "token", c.cfg.Client.APIToken, "admin bearer token for writes")
	flags.StringVar(&c.cfg.Client.LocalDir, "local-dir", c.cfg.Client.LocalDir, "directory for offline storage")

	root.AddCommand(
		newListCmd(c),
		newGetCmd(c),
		newSearchCmd(c),
		newFeaturedCmd(c),
		newCategoriesCmd(c),
		newCreateCmd(c),
		newUpdateCmd(c),
		newDeleteCmd(c),
		newImportCmd(c),
		newSitemapCmd(c),
	)
	return root
}

func (c *cli) printPosts(w io.Writer, list []posts.Post) error {
	if c.asJSON {
		return writeJSON(w, list)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tTITLE")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Date, p.Category, p.Title)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportWrite prints the outcome of a write and warns when it only reached
// local storage.
func reportWrite(cmd *cobra.Command, verb string, res client.WriteResult, id string) {
	if res.Post != nil {
		id = res.Post.ID
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, id, res.Source)
	if res.Degraded {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: storage API unreachable, change saved locally only")
	}
}
