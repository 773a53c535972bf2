// Package content holds the static portfolio data: profile, experience,
// projects, tech stack and the FAQ used by the chat assistant.
package content

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var siteYAML []byte

type Social struct {
	GitHub   string `yaml:"github" json:"github"`
	LinkedIn string `yaml:"linkedin" json:"linkedin"`
	Twitter  string `yaml:"twitter" json:"twitter,omitempty"`
	Medium   string `yaml:"medium" json:"medium,omitempty"`
}

type Availability struct {
	Status  string `yaml:"status" json:"status"`
	Message string `yaml:"message" json:"message"`
}

type Profile struct {
	Name         string       `yaml:"name" json:"name"`
	Role         string       `yaml:"role" json:"role"`
	Tagline      string       `yaml:"tagline" json:"tagline"`
	Bio          string       `yaml:"bio" json:"bio"`
	Location     string       `yaml:"location" json:"location"`
	Email        string       `yaml:"email" json:"email"`
	Social       Social       `yaml:"social" json:"social"`
	Availability Availability `yaml:"availability" json:"availability"`
}

type Experience struct {
	ID           string   `yaml:"id" json:"id"`
	Company      string   `yaml:"company" json:"company"`
	Role         string   `yaml:"role" json:"role"`
	Period       string   `yaml:"period" json:"period"`
	Description  string   `yaml:"description" json:"description"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	Achievements []string `yaml:"achievements" json:"achievements"`
}

type Project struct {
	Slug        string   `yaml:"slug" json:"slug"`
	Title       string   `yaml:"title" json:"title"`
	Summary     string   `yaml:"summary" json:"summary"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Year        int      `yaml:"year" json:"year"`
	RepoURL     string   `yaml:"repoUrl" json:"repoUrl,omitempty"`
	LiveURL     string   `yaml:"liveUrl" json:"liveUrl,omitempty"`
	Tech        []string `yaml:"tech" json:"tech"`
	Cover       string   `yaml:"cover" json:"cover"`
	Gallery     []string `yaml:"gallery" json:"gallery,omitempty"`
	Featured    bool     `yaml:"featured" json:"featured"`
	Order       int      `yaml:"order" json:"order"`
	Challenges  []string `yaml:"challenges" json:"challenges,omitempty"`
	Outcomes    []string `yaml:"outcomes" json:"outcomes,omitempty"`
}

func (p Project) UsesTech(tech string) bool {
	for _, t := range p.Tech {
		if strings.EqualFold(t, tech) {
			return true
		}
	}
	return false
}

type TechItem struct {
	Name        string   `yaml:"name" json:"name"`
	Level       string   `yaml:"level" json:"level"`
	Domain      string   `yaml:"domain" json:"domain"`
	Since       int      `yaml:"since" json:"since"`
	Site        string   `yaml:"site" json:"site,omitempty"`
	UseCases    []string `yaml:"useCases" json:"useCases"`
	Description string   `yaml:"description" json:"description"`
}

type TechDomain struct {
	Key         string `yaml:"key" json:"key"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description,omitempty"`
}

type FAQ struct {
	Q string `yaml:"q" json:"q"`
	A string `yaml:"a" json:"a"`
}

type Site struct {
	Profile     Profile      `yaml:"profile"`
	Experience  []Experience `yaml:"experience"`
	Projects    []Project    `yaml:"projects"`
	TechDomains []TechDomain `yaml:"techDomains"`
	TechStack   []TechItem   `yaml:"techStack"`
	Skills      []string     `yaml:"skills"`
	FAQ         []FAQ        `yaml:"faq"`
}

// Parse decodes a site document and orders projects by their Order field.
func Parse(raw []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(err, "decode site content")
	}
	if strings.TrimSpace(s.Profile.Name) == "" {
		return nil, errors.New("site content has no profile name")
	}
	seen := make(map[string]struct{}, len(s.Projects))
	for _, p := range s.Projects {
		if p.Slug == "" {
			return nil, errors.Errorf("project %q has no slug", p.Title)
		}
		if _, dup := seen[p.Slug]; dup {
			return nil, errors.Errorf("duplicate project slug %q", p.Slug)
		}
		seen[p.Slug] = struct{}{}
	}
	sort.SliceStable(s.Projects, func(i, j int) bool { return s.Projects[i].Order < s.Projects[j].Order })
	return &s, nil
}

// Load returns the site content compiled into the binary.
func Load() (*Site, error) {
	return Parse(siteYAML)
}

func (s *Site) FeaturedProjects() []Project {
	out := make([]Project, 0, len(s.Projects))
	for _, p := range s.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

func (s *Site) ProjectBySlug(slug string) (Project, bool) {
	for _, p := range s.Projects {
		if p.Slug == slug {
			return p, true
		}
	}
	return Project{}, false
}

func (s *Site) ProjectsByTech(tech string) []Project {
	out := make([]Project, 0, len(s.Projects))
	for _, p := range s.Projects {
		if p.UsesTech(tech) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Site) TechByDomain(domain string) []TechItem {
	out := make([]TechItem, 0)
	for _, t := range s.TechStack {
		if t.Domain == domain {
			out = append(out, t)
		}
	}
	return out
}

// FeaturedTech lists expert and advanced entries.
func (s *Site) FeaturedTech() []TechItem {
	out := make([]TechItem, 0)
	for _, t := range s.TechStack {
		if t.Level == "expert" || t.Level == "advanced" {
			out = append(out, t)
		}
	}
	return out
}
