package candidate

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spigell/resume-matcher/internal/identity"
	"github.com/spigell/resume-matcher/internal/skills"
)

// Contact fields extracted from a resume.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Attributes are the structured fields extracted from a resume at ingestion time.
type Attributes struct {
	ExperienceYears float64  `json:"experience_years"`
	Skills          []string `json:"skills,omitempty"`
	Education       string   `json:"education,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Location        string   `json:"location,omitempty"`
}

// Record is a retrieved candidate document. Everything except the derived
// fields is owned by the retrieval side and treated as read-only.
type Record struct {
	Identity          string     `json:"identity"`
	DisplayName       string     `json:"display_name"`
	RawText           string     `json:"raw_text"`
	SourceFile        string     `json:"source_file,omitempty"`
	Contact           Contact    `json:"contact"`
	Attributes        Attributes `json:"attributes"`
	RetrievalDistance float64    `json:"retrieval_distance"`

	// Derived for the duration of a single request, never persisted.
	CombinedScore  float64          `json:"combined_score,omitempty"`
	SkillsAnalysis *skills.Analysis `json:"skills_analysis,omitempty"`
}

// ResolveIdentity fills Identity from the record content when it is missing.
func (r *Record) ResolveIdentity() string {
	if strings.TrimSpace(r.Identity) == "" {
		r.Identity = identity.Resolve(r.RawText, identity.Contact{
			Email: r.Contact.Email,
			Phone: r.Contact.Phone,
		}, r.SourceFile)
	}
	return r.Identity
}

// Name returns the display name or a placeholder.
func (r *Record) Name() string {
	if name := strings.TrimSpace(r.DisplayName); name != "" {
		return name
	}
	return "Unknown"
}

// SkillsText joins the structured skills into one lowercased string.
func (r *Record) SkillsText() string {
	return strings.ToLower(strings.Join(r.Attributes.Skills, ", "))
}

// SearchText is the lowercased skills field followed by the body text.
func (r *Record) SearchText() string {
	return r.SkillsText() + " " + strings.ToLower(r.RawText)
}

// Clone returns a shallow copy so derived fields can be attached without
// touching the collaborator-owned record.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

type Candidates struct {
	Items []*Record
}

func New(records ...*Record) *Candidates {
	items := make([]*Record, 0, len(records))
	items = append(items, records...)
	return &Candidates{Items: items}
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func (c *Candidates) FindByIdentity(id string) *Record {
	for _, record := range c.Items {
		if record.Identity == id {
			return record
		}
	}
	return nil
}

func (c *Candidates) Identities() []string {
	ids := make([]string, 0, len(c.Items))
	for _, record := range c.Items {
		ids = append(ids, record.Identity)
	}
	return ids
}

// Exclude removes records whose identity is listed in targets, preserving the
// order of the remaining records. It returns the removed identities.
func (c *Candidates) Exclude(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		drop[t] = struct{}{}
	}

	var excluded []string
	kept := make([]*Record, 0, len(c.Items))
	for _, record := range c.Items {
		if _, ok := drop[record.Identity]; ok {
			excluded = append(excluded, record.Identity)
			continue
		}
		kept = append(kept, record)
	}
	c.Items = kept

	return excluded
}

// Keep retains records accepted by fn, preserving order, and returns the
// identities of the dropped ones.
func (c *Candidates) Keep(fn func(*Record) bool) []string {
	var dropped []string
	kept := make([]*Record, 0, len(c.Items))
	for _, record := range c.Items {
		if fn(record) {
			kept = append(kept, record)
			continue
		}
		dropped = append(dropped, record.Identity)
	}
	c.Items = kept
	return dropped
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}
