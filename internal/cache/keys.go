package cache

// Keys names every logical resource stored in Memory.
var Keys = keys{}

type keys struct{}

func (keys) BlogPosts() string { return "blog:posts" }
func (keys) Projects() string { return "projects:all" }
func (keys) Project(slug string) string { return "project:" + slug }
func (keys) TechStack() string { return "tech:stack" }
