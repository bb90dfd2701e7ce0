package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudslate/cloudslate/internal/posts"
	"github.com/cloudslate/cloudslate/internal/sitemap"
)

func newSitemapCmd(c *cli) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print sitemap.xml for the resolved posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := posts.SortByDate(c.client.Resolver.GetBlogPosts(cmd.Context()))
			out, err := sitemap.Build(baseURL, list, time.Now())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", c.cfg.Client.SiteURL, "public site URL")
	return cmd
}
