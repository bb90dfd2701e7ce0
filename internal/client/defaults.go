package client

import "github.com/cloudslate/cloudslate/internal/posts"

const defaultAuthor = "Muhammad Khuhro"

var builtinPosts = []posts.Post{
	{
		ID:       "getting-started-with-web-development",
		Slug:     "getting-started-with-web-development",
		Title:    "Getting Started with Web Development in 2024",
		Excerpt:  "A comprehensive guide to starting your journey in web development, covering modern tools, frameworks, and best practices.",
		Content:  "## Where to begin\n\nLearn HTML for structure, CSS for presentation and JavaScript for behaviour, then pick one framework and build small projects with it.",
		Date:     "2024-01-15",
		Category: "Web Development",
		Tags:     []string{"HTML", "CSS", "JavaScript", "Beginner"},
		Featured: true,
		Image:    "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=800",
		ReadTime: "5 min read",
	},
	{
		ID:       "responsive-design-principles",
		Slug:     "responsive-design-principles",
		Title:    "Modern Responsive Design Principles",
		Excerpt:  "Learn the key principles of responsive web design and how to create websites that work beautifully on all devices.",
		Content:  "## Mobile first\n\nStart from the smallest screen, use fluid grids and relative units, and let media queries add layout as space allows.",
		Date:     "2024-01-10",
		Category: "Design",
		Tags:     []string{"CSS", "Responsive Design", "Mobile"},
		Featured: true,
		Image:    "https://images.unsplash.com/photo-1467232004584-a241de8bcf5d?w=800",
		ReadTime: "4 min read",
	},
	{
		ID:       "seo-optimization-guide",
		Slug:     "seo-optimization-guide",
		Title:    "Complete SEO Optimization Guide for Bloggers",
		Excerpt:  "Master SEO techniques to improve your blog's visibility and attract more organic traffic.",
		Content:  "## Content comes first\n\nWrite for readers, use descriptive titles and meta descriptions, keep pages fast and publish a sitemap.",
		Date:     "2024-01-05",
		Category: "SEO",
		Tags:     []string{"SEO", "Marketing", "Content"},
		Featured: true,
		Image:    "https://images.unsplash.com/photo-1432888622747-4eb9a8f2d523?w=800",
		ReadTime: "6 min read",
	},
	{
		ID:       "javascript-es6-features",
		Slug:     "javascript-es6-features",
		Title:    "Essential ES6+ JavaScript Features Every Developer Should Know",
		Excerpt:  "Explore the most important ES6 and modern JavaScript features that will make you a better developer.",
		Content:  "## Modern syntax\n\nArrow functions, destructuring, template literals, modules and async/await cover most day to day code.",
		Date:     "2024-01-01",
		Category: "JavaScript",
		Tags:     []string{"JavaScript", "ES6", "Programming"},
		Image:    "https://images.unsplash.com/photo-1579468118864-1b9ea3c0db4a?w=800",
		ReadTime: "7 min read",
	},
	{
		ID:       "css-grid-vs-flexbox",
		Slug:     "css-grid-vs-flexbox",
		Title:    "CSS Grid vs Flexbox: When to Use Each",
		Excerpt:  "Understanding when to use CSS Grid and when to use Flexbox can make your layouts more efficient and maintainable.",
		Content:  "## Two dimensions or one\n\nGrid lays out rows and columns together. Flexbox distributes items along a single axis.",
		Date:     "2023-12-28",
		Category: "CSS",
		Tags:     []string{"CSS", "Grid", "Flexbox", "Layout"},
		Image:    "https://images.unsplash.com/photo-1504639725590-34d0984388bd?w=800",
		ReadTime: "5 min read",
	},
	{
		ID:       "web-performance-tips",
		Slug:     "web-performance-tips",
		Title:    "10 Web Performance Tips for Faster Websites",
		Excerpt:  "Learn practical tips to improve your website's performance and provide a better user experience.",
		Content:  "## Ship less\n\nCompress images, lazy load what is below the fold, cache static assets and defer scripts that are not needed on first paint.",
		Date:     "2023-12-25",
		Category: "Performance",
		Tags:     []string{"Performance", "Optimization", "Web Development"},
		Image:    "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=800",
		ReadTime: "8 min read",
	},
}

// DefaultPosts returns a fresh copy of the built-in posts served when no
// source has any.
func DefaultPosts() []posts.Post {
	out := make([]posts.Post, len(builtinPosts))
	for i, p := range builtinPosts {
		p.Author = defaultAuthor
		p.Tags = append([]string{}, p.Tags...)
		out[i] = p
	}
	return out
}
