// Package dedup collapses repeated candidate records returned by retrieval.
package dedup

import (
	"strings"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// Rule names the check that marked a record as a duplicate.
type Rule string

const (
	RuleIdentity         Rule = "identity"
	RuleEmail            Rule = "email"
	RulePhone            Rule = "phone"
	RuleNameAndContent   Rule = "name_and_content"
	RuleIdenticalContent Rule = "identical_content"
)

type Config struct {
	NameThreshold             float64 `mapstructure:"name-threshold" validate:"gte=0,lte=1"`
	ContentThreshold          float64 `mapstructure:"content-threshold" validate:"gte=0,lte=1"`
	IdenticalContentThreshold float64 `mapstructure:"identical-content-threshold" validate:"gte=0,lte=1"`
	ContentPrefix             int     `mapstructure:"content-prefix" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{
		NameThreshold:             0.90,
		ContentThreshold:          0.85,
		IdenticalContentThreshold: 0.95,
		ContentPrefix:             500,
	}
}

// Duplicate describes a dropped record and the kept record it matched.
type Duplicate struct {
	Identity    string `json:"identity"`
	DuplicateOf string `json:"duplicate_of"`
	Rule        Rule   `json:"rule"`
}

type seen struct {
	record  *candidate.Record
	email   string
	phone   string
	name    string
	content string
}

// Find keeps the first occurrence of every candidate and reports the rest.
// Input order is preserved. The input slice is not modified.
func Find(records []*candidate.Record, cfg Config) ([]*candidate.Record, []Duplicate) {
	if cfg.ContentPrefix <= 0 {
		cfg.ContentPrefix = DefaultConfig().ContentPrefix
	}

	kept := make([]*candidate.Record, 0, len(records))
	var dups []Duplicate

	var seenList []seen
	ids := map[string]string{}
	emails := map[string]string{}
	phones := map[string]string{}

	for _, r := range records {
		if r == nil {
			continue
		}

		s := seen{
			record:  r,
			email:   strings.ToLower(strings.TrimSpace(r.Contact.Email)),
			phone:   strings.TrimSpace(r.Contact.Phone),
			name:    strings.ToLower(strings.TrimSpace(r.DisplayName)),
			content: similarity.Prefix(strings.ToLower(strings.TrimSpace(r.RawText)), cfg.ContentPrefix),
		}

		if of, rule, ok := match(s, seenList, ids, emails, phones, cfg); ok {
			dups = append(dups, Duplicate{Identity: r.Identity, DuplicateOf: of, Rule: rule})
			continue
		}

		kept = append(kept, r)
		seenList = append(seenList, s)
		if r.Identity != "" {
			ids[r.Identity] = r.Identity
		}
		if s.email != "" {
			emails[s.email] = r.Identity
		}
		if s.phone != "" {
			phones[s.phone] = r.Identity
		}
	}

	return kept, dups
}

// Deduplicate returns the unique records of the input, first occurrence wins.
func Deduplicate(records []*candidate.Record, cfg Config) []*candidate.Record {
	kept, _ := Find(records, cfg)
	return kept
}

func match(s seen, kept []seen, ids, emails, phones map[string]string, cfg Config) (string, Rule, bool) {
	if of, ok := ids[s.record.Identity]; ok && s.record.Identity != "" {
		return of, RuleIdentity, true
	}
	if s.email != "" {
		if of, ok := emails[s.email]; ok {
			return of, RuleEmail, true
		}
	}
	if s.phone != "" {
		if of, ok := phones[s.phone]; ok {
			return of, RulePhone, true
		}
	}

	if s.content == "" {
		return "", "", false
	}

	for _, k := range kept {
		if k.content == "" {
			continue
		}
		contentRatio := similarity.Ratio(s.content, k.content)

		if s.name != "" && k.name != "" &&
			similarity.Ratio(s.name, k.name) > cfg.NameThreshold &&
			contentRatio > cfg.ContentThreshold {
			return k.record.Identity, RuleNameAndContent, true
		}
		if contentRatio > cfg.IdenticalContentThreshold {
			return k.record.Identity, RuleIdenticalContent, true
		}
	}

	return "", "", false
}
