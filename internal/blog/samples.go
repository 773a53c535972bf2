package blog

type Post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
	Preview     string   `json:"preview"`
	ReadTime    string   `json:"readTime"`
	Tags        []string `json:"tags"`
}

const fallbackCount = 5

// SamplePosts are served when the live feed is unavailable.
var SamplePosts = []Post{
	{
		ID:          "1",
		Title:       "Building Performant React Applications in 2024",
		URL:         "https://medium.com/@melvinprince/building-performant-react-applications-2024",
		PublishedAt: "2024-01-15",
		Preview:     "Explore the latest techniques for optimizing React applications, including concurrent features, code splitting, and performance monitoring strategies that can significantly improve your app's user experience.",
		ReadTime:    "8 min read",
		Tags:        []string{"React", "Performance", "Web Development"},
	},
	{
		ID:          "2",
		Title:       "The Complete Guide to Next.js App Router",
		URL:         "https://medium.com/@melvinprince/complete-guide-nextjs-app-router",
		PublishedAt: "2024-01-08",
		Preview:     "A comprehensive walkthrough of Next.js App Router, covering server components, streaming, and the new paradigms that make modern web development more efficient and user-friendly.",
		ReadTime:    "12 min read",
		Tags:        []string{"Next.js", "React", "Server Components"},
	},
	{
		ID:          "3",
		Title:       "Accessibility-First Development: Beyond Compliance",
		URL:         "https://medium.com/@melvinprince/accessibility-first-development",
		PublishedAt: "2023-12-22",
		Preview:     "Moving beyond basic WCAG compliance to create truly inclusive web experiences. Learn practical strategies for building accessible applications from the ground up.",
		ReadTime:    "10 min read",
		Tags:        []string{"Accessibility", "UX", "Web Standards"},
	},
	{
		ID:          "4",
		Title:       "TypeScript Patterns for Scalable Applications",
		URL:         "https://medium.com/@melvinprince/typescript-patterns-scalable-apps",
		PublishedAt: "2023-12-10",
		Preview:     "Advanced TypeScript patterns and techniques that help maintain code quality and developer productivity as your application grows in complexity and team size.",
		ReadTime:    "15 min read",
		Tags:        []string{"TypeScript", "Architecture", "Best Practices"},
	},
	{
		ID:          "5",
		Title:       "Modern CSS: From Flexbox to Container Queries",
		URL:         "https://medium.com/@melvinprince/modern-css-flexbox-container-queries",
		PublishedAt: "2023-11-28",
		Preview:     "Exploring the evolution of CSS layout techniques and how modern features like container queries are changing the way we approach responsive design.",
		ReadTime:    "7 min read",
		Tags:        []string{"CSS", "Responsive Design", "Web Standards"},
	},
}

// Fallback returns a fresh copy of the first five sample posts as feed items.
func Fallback() []Item {
	n := fallbackCount
	if len(SamplePosts) < n {
		n = len(SamplePosts)
	}
	out := make([]Item, 0, n)
	for _, p := range SamplePosts[:n] {
		out = append(out, Item{Title: p.Title, URL: p.URL, PublishedAt: p.PublishedAt, Preview: p.Preview})
	}
	return out
}
