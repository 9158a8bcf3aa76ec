// Package criteria turns a free-text job description into structured
// requirements. Extraction is best effort and never fails.
package criteria

import (
	"regexp"
	"strconv"
	"strings"
)

// Unbounded is the max experience of an open-ended range.
const Unbounded = 999

type JobCriteria struct {
	RequiredSkills         []string  `json:"required_skills"`
	PreferredSkills        []string  `json:"preferred_skills"`
	MinExperience          int       `json:"min_experience"`
	MaxExperience          int       `json:"max_experience"`
	RequiredCertifications []string  `json:"required_certifications"`
	RoleLevel              RoleLevel `json:"role_level"`
	DomainKeywords         []string  `json:"domain_keywords"`
}

// OpenEnded reports whether the experience range has no upper bound.
func (c *JobCriteria) OpenEnded() bool {
	return IsOpenEnded(c.MaxExperience)
}

// IsOpenEnded treats non-positive and sentinel maximums as unbounded.
func IsOpenEnded(maxExperience int) bool {
	return maxExperience <= 0 || maxExperience >= Unbounded
}

// ExperienceRange renders the range for humans, e.g. "3-5" or "10+".
func (c *JobCriteria) ExperienceRange() string {
	if c.OpenEnded() {
		return strconv.Itoa(c.MinExperience) + "+"
	}
	return strconv.Itoa(c.MinExperience) + "-" + strconv.Itoa(c.MaxExperience)
}

var (
	// A section ends at a blank line or at the next "Heading:" line.
	requiredSection  = regexp.MustCompile(`(?s)Required Skills:(.*?)(?:\n[ \t]*\n|\n[A-Za-z][A-Za-z /]*:|$)`)
	preferredSection = regexp.MustCompile(`(?s)(?:Preferred Skills|Nice to have):(.*?)(?:\n[ \t]*\n|\n[A-Za-z][A-Za-z /]*:|$)`)
	listSeparators   = regexp.MustCompile(`[,\n•\-]`)

	rangePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)[\s\-–]+(\d+)\s*years?\s*(?:of\s*)?(?:experience|development)`),
		regexp.MustCompile(`(\d+)\+\s*years?\s*(?:of\s*)?(?:experience|development)`),
		regexp.MustCompile(`minimum\s*(?:of\s*)?(\d+)\s*years?`),
		regexp.MustCompile(`at least\s*(\d+)\s*years?`),
		regexp.MustCompile(`(\d+)\s*to\s*(\d+)\s*years?`),
		regexp.MustCompile(`(\d+)\s*[\-–]\s*(\d+)\s*years?`),
		regexp.MustCompile(`(\d+)\+\s*years?`),
	}

	certKeywords = []string{"certification", "certified", "certificate"}
	certClauses  = map[string]*regexp.Regexp{}

	// Checked in order; the first group with a hit decides.
	levelWords = []struct {
		level RoleLevel
		words []string
	}{
		{LevelSenior, []string{"senior", "sr.", "sr ", "lead", "principal"}},
		{LevelLead, []string{"manager", "director", "head"}},
		{LevelJunior, []string{"junior", "entry", "associate", "jr."}},
	}

	domains = []string{"frontend", "backend", "fullstack", "devops", "data", "ml", "ai", "mobile", "cloud"}
)

func init() {
	for _, k := range certKeywords {
		certClauses[k] = regexp.MustCompile(`(?i)(` + k + `[^.]*)`)
	}
}

// Extract parses job text. Missing sections yield defaults: no skills,
// experience 0 to Unbounded, mid level.
func Extract(text string) *JobCriteria {
	lower := strings.ToLower(text)

	c := &JobCriteria{
		RequiredSkills:  section(requiredSection, text),
		PreferredSkills: section(preferredSection, text),
		RoleLevel:       LevelMid,
	}
	c.MinExperience, c.MaxExperience = experience(lower)
	c.RequiredCertifications = certifications(text, lower)

levels:
	for _, group := range levelWords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				c.RoleLevel = group.level
				break levels
			}
		}
	}

	for _, d := range domains {
		if strings.Contains(lower, d) {
			c.DomainKeywords = append(c.DomainKeywords, d)
		}
	}

	return c
}

func section(re *regexp.Regexp, text string) []string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var out []string
	for _, part := range listSeparators.Split(strings.TrimSpace(m[1]), -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func experience(lower string) (int, int) {
	for _, re := range rangePatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}

		lo, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if len(m) < 3 {
			return lo, Unbounded
		}

		hi, err := strconv.Atoi(m[2])
		if err != nil {
			return lo, Unbounded
		}
		if hi < lo {
			lo, hi = hi, lo
		}
		return lo, hi
	}
	return 0, Unbounded
}

func certifications(text, lower string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, k := range certKeywords {
		if !strings.Contains(lower, k) {
			continue
		}
		m := certClauses[k].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		clause := strings.TrimSpace(m[1])
		if _, ok := seen[strings.ToLower(clause)]; ok {
			continue
		}
		seen[strings.ToLower(clause)] = struct{}{}
		out = append(out, clause)
	}
	return out
}
