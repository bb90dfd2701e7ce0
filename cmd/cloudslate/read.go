package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudslate/cloudslate/internal/posts"
)

func newListCmd(c *cli) *cobra.Command {
	var category string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := c.client.Resolver.Resolve(cmd.Context())
			fmt.Fprintf(cmd.ErrOrStderr(), "source: %s\n", res.Source)

			list := posts.SortByDate(res.Posts)
			if category != "" {
				list = posts.ByCategory(list, category)
			}
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}
			return c.printPosts(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only posts in this category")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of posts")
	return cmd
}

func newGetCmd(c *cli) *cobra.Command {
	var related bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.client.Resolver.GetBlogPosts(cmd.Context())
			p, ok := posts.Find(list, args[0])
			if !ok {
				return fmt.Errorf("post %q: %w", args[0], posts.ErrNotFound)
			}
			if related {
				return c.printPosts(cmd.OutOrStdout(), posts.Related(list, p))
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().BoolVar(&related, "related", false, "list related posts instead")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search posts by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.client.Resolver.GetBlogPosts(cmd.Context())
			return c.printPosts(cmd.OutOrStdout(), posts.Search(list, strings.Join(args, " ")))
		},
	}
}

func newFeaturedCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := posts.SortByDate(c.client.Resolver.GetBlogPosts(cmd.Context()))
			return c.printPosts(cmd.OutOrStdout(), posts.Featured(list, limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 3, "maximum number of posts, 0 for all")
	return cmd
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats := posts.Categories(c.client.Resolver.GetBlogPosts(cmd.Context()))
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), cats)
			}
			for _, cat := range cats {
				fmt.Fprintln(cmd.OutOrStdout(), cat)
			}
			return nil
		},
	}
}
