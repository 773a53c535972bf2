package content

import (
	"portfolio/internal/cache"
)

type ProjectFilter struct {
	FeaturedOnly bool
	Tech         string
}

type TechStack struct {
	Domains  []TechDomain `json:"domains"`
	Items    []TechItem   `json:"items"`
	Featured []TechItem   `json:"featured"`
}

type About struct {
	Profile    Profile      `json:"profile"`
	Experience []Experience `json:"experience"`
}

// Service answers content reads through the shared memory cache.
type Service struct {
	site   *Site
	cache  *cache.Memory
	ttlSec int
}

func NewService(site *Site, c *cache.Memory) *Service {
	return &Service{site: site, cache: c, ttlSec: cache.Durations.ProjectData}
}

func (s *Service) Projects(f ProjectFilter) []Project {
	var all []Project
	if v, ok := s.cache.Get(cache.Keys.Projects()); ok {
		all, _ = v.([]Project)
	}
	if all == nil {
		all = append([]Project(nil), s.site.Projects...)
		s.cache.Set(cache.Keys.Projects(), all, s.ttlSec)
	}
	out := make([]Project, 0, len(all))
	for _, p := range all {
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		if f.Tech != "" && !p.UsesTech(f.Tech) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Service) Project(slug string) (Project, bool) {
	key := cache.Keys.Project(slug)
	if v, ok := s.cache.Get(key); ok {
		if p, ok := v.(Project); ok {
			return p, true
		}
	}
	p, ok := s.site.ProjectBySlug(slug)
	if !ok {
		return Project{}, false
	}
	s.cache.Set(key, p, s.ttlSec)
	return p, true
}

func (s *Service) TechStack() TechStack {
	if v, ok := s.cache.Get(cache.Keys.TechStack()); ok {
		if ts, ok := v.(TechStack); ok {
			return ts
		}
	}
	ts := TechStack{
		Domains:  s.site.TechDomains,
		Items:    s.site.TechStack,
		Featured: s.site.FeaturedTech(),
	}
	s.cache.Set(cache.Keys.TechStack(), ts, s.ttlSec)
	return ts
}

func (s *Service) About() About {
	return About{Profile: s.site.Profile, Experience: s.site.Experience}
}
