package candidate

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Document is the wire shape of a resume document produced by ingestion and
// returned by retrieval services. Metadata is loosely typed on purpose: it
// comes from vector store metadata where every value may be a string.
type Document struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Content  string         `json:"content"`
	File     string         `json:"file,omitempty"`
	Distance *float64       `json:"distance,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type metadata struct {
	CandidateName   string   `mapstructure:"candidate_name"`
	Email           string   `mapstructure:"email"`
	Phone           string   `mapstructure:"phone"`
	ExperienceYears float64  `mapstructure:"experience_years"`
	Skills          []string `mapstructure:"skills"`
	Education       string   `mapstructure:"education"`
	Certifications  []string `mapstructure:"certifications"`
	Location        string   `mapstructure:"location"`
	PDFFilename     string   `mapstructure:"pdf_filename"`
}

// LoadPool reads a JSON array of documents from path.
func LoadPool(path string) (*Candidates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate pool %q: %w", path, err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing candidate pool %q: %w", path, err)
	}

	return FromDocuments(docs)
}

// FromDocuments converts documents to records, resolving identities that are
// not already assigned.
func FromDocuments(docs []Document) (*Candidates, error) {
	records := make([]*Record, 0, len(docs))
	for i := range docs {
		record, err := docs[i].Record()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		records = append(records, record)
	}
	return New(records...), nil
}

// Record decodes the document into a Record.
func (d *Document) Record() (*Record, error) {
	var meta metadata
	if len(d.Metadata) > 0 {
		if err := decodeMetadata(d.Metadata, &meta); err != nil {
			return nil, err
		}
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = strings.TrimSpace(meta.CandidateName)
	}

	file := strings.TrimSpace(d.File)
	if file == "" {
		file = strings.TrimSpace(meta.PDFFilename)
	}

	record := &Record{
		Identity:    strings.TrimSpace(d.ID),
		DisplayName: name,
		RawText:     d.Content,
		SourceFile:  file,
		Contact: Contact{
			Email: strings.TrimSpace(meta.Email),
			Phone: strings.TrimSpace(meta.Phone),
		},
		Attributes: Attributes{
			ExperienceYears: meta.ExperienceYears,
			Skills:          cleanSet(meta.Skills),
			Education:       strings.TrimSpace(meta.Education),
			Certifications:  cleanSet(meta.Certifications),
			Location:        strings.TrimSpace(meta.Location),
		},
	}
	if d.Distance != nil {
		record.RetrievalDistance = *d.Distance
	}

	record.ResolveIdentity()
	return record, nil
}

func decodeMetadata(input map[string]any, out *metadata) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("building metadata decoder: %w", err)
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}
	return nil
}

// cleanSet trims, drops empty and duplicate (case-insensitive) entries, keeping first spelling.
func cleanSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}
