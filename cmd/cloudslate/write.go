package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cloudslate/cloudslate/internal/posts"
)

// postFlags binds one flag per editable post field.
type postFlags struct {
	title, excerpt, content, author, date, category, image, readTime string
	tags                                                             []string
	featured                                                         bool
	file                                                             string
}

func (f *postFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "post title")
	fs.StringVar(&f.excerpt, "excerpt", "", "short summary")
	fs.StringVar(&f.content, "content", "", "post body")
	fs.StringVar(&f.author, "author", "", "author name")
	fs.StringVar(&f.date, "date", "", "publication date (YYYY-MM-DD)")
	fs.StringVar(&f.category, "category", "", "category")
	fs.StringVar(&f.image, "image", "", "cover image URL")
	fs.StringVar(&f.readTime, "read-time", "", `reading time, e.g. "4 min read"`)
	fs.StringSliceVar(&f.tags, "tags", nil, "comma separated tags")
	fs.BoolVar(&f.featured, "featured", false, "mark as featured")
	fs.StringVarP(&f.file, "file", "f", "", "read the post or patch as JSON from this file")
}

// patch returns the fields whose flags were set, keyed by JSON name.
func (f *postFlags) patch(fs *pflag.FlagSet) (posts.Patch, error) {
	if f.file != "" {
		var p posts.Patch
		if err := readJSONFile(f.file, &p); err != nil {
			return nil, err
		}
		return p, nil
	}

	values := map[string]any{
		"title":    f.title,
		"excerpt":  f.excerpt,
		"content":  f.content,
		"author":   f.author,
		"date":     f.date,
		"category": f.category,
		"image":    f.image,
		"readTime": f.readTime,
		"tags":     f.tags,
		"featured": f.featured,
	}
	flagNames := map[string]string{"readTime": "read-time"}

	p := posts.Patch{}
	for field, v := range values {
		name := field
		if alias, ok := flagNames[field]; ok {
			name = alias
		}
		if !fs.Changed(name) {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		p[field] = raw
	}
	return p, nil
}

func newCreateCmd(c *cli) *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch, err := f.patch(cmd.Flags())
			if err != nil {
				return err
			}
			p, err := patch.Apply(posts.Post{})
			if err != nil {
				return err
			}
			if id, ok := patch["id"]; ok {
				if err := json.Unmarshal(id, &p.ID); err != nil {
					return fmt.Errorf("id: %w", err)
				}
			}
			if p.Title == "" {
				return fmt.Errorf("title is required")
			}
			res, err := c.client.Writer.CreatePost(cmd.Context(), p)
			if err != nil {
				return err
			}
			reportWrite(cmd, "created", res, "")
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update")
			}
			res, err := c.client.Writer.UpdatePost(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			reportWrite(cmd, "updated", res, args[0])
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.client.Writer.DeletePost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			reportWrite(cmd, "deleted", res, args[0])
			return nil
		},
	}
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Upsert every post in a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []posts.Post
			if err := readJSONFile(args[0], &list); err != nil {
				return err
			}
			res, err := c.client.Writer.SavePosts(cmd.Context(), list)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d posts (%s)\n", len(res.Posts), res.Source)
			if res.Degraded {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: storage API unreachable, posts saved locally only")
			}
			return nil
		},
	}
}

func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
