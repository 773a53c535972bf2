// Package chat implements the scripted portfolio assistant.
package chat

import (
	"fmt"
	"strings"
	"unicode"

	"portfolio/internal/content"
)

const MaxMessageRunes = 500

var stopwords = map[string]struct{}{
	"what": {}, "which": {}, "where": {}, "when": {}, "does": {}, "have": {}, "your": {},
	"with": {}, "that": {}, "this": {}, "about": {}, "there": {}, "would": {}, "could": {},
	"should": {}, "from": {}, "they": {}, "them": {}, "will": {}, "into": {}, "you": {}, "are": {},
}

type faqEntry struct {
	keywords []string
	answer   string
}

// Responder picks a canned reply by keyword. FAQ entries win over the
// built-in topics; topics are checked in a fixed order.
type Responder struct {
	faq          []faqEntry
	projects     []content.Project
	skills       []string
	linkedin     string
	availability string
	bio          string
	firstName    string
}

func NewResponder(site *content.Site) *Responder {
	r := &Responder{
		projects:     site.FeaturedProjects(),
		skills:       site.Skills,
		linkedin:     site.Profile.Social.LinkedIn,
		availability: site.Profile.Availability.Message,
		bio:          site.Profile.Bio,
		firstName:    firstName(site.Profile.Name),
	}
	for _, f := range site.FAQ {
		r.faq = append(r.faq, faqEntry{keywords: faqKeywords(f.Q), answer: f.A})
	}
	return r
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return "the site owner"
}

func faqKeywords(q string) []string {
	words := strings.FieldsFunc(strings.ToLower(q), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '.'
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".-")
		if len(w) <= 3 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		out = append(out, w)
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (r *Responder) Reply(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))

	for _, f := range r.faq {
		if containsAny(lower, f.keywords...) {
			return f.answer
		}
	}

	switch {
	case containsAny(lower, "project", "work", "portfolio"):
		lines := make([]string, 0, len(r.projects))
		for _, p := range r.projects {
			lines = append(lines, fmt.Sprintf("• **%s**: %s (%s)", p.Title, p.Summary, strings.Join(p.Tech, ", ")))
		}
		return "Here are some of my featured projects:\n\n" + strings.Join(lines, "\n") +
			"\n\nYou can view more details on the [projects page](/projects)."
	case containsAny(lower, "skill", "technology", "tech"):
		skills := r.skills
		if len(skills) > 6 {
			skills = skills[:6]
		}
		return fmt.Sprintf("My key skills include: %s. You can see my complete tech stack on the [tech page](/tech).", strings.Join(skills, ", "))
	case containsAny(lower, "contact", "hire", "work together"):
		return fmt.Sprintf("I'd love to hear from you! You can reach out through the [contact form](/contact) or connect with me on [LinkedIn](%s). %s", r.linkedin, r.availability)
	case containsAny(lower, "experience", "background"):
		return r.bio
	case containsAny(lower, "hello", "hi", "hey"):
		return fmt.Sprintf("Hi there! I'm %s's portfolio assistant. I can help you learn about his experience, projects, and skills. What would you like to know?", r.firstName)
	}
	return fmt.Sprintf("I'd be happy to help! You can ask me about %s's experience, projects, skills, or how to get in touch. Try asking something like 'What projects have you worked on?' or 'What's your experience with React?'", r.firstName)
}
