package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/identity"
)

func record(id, name, email, phone, text string) *candidate.Record {
	return &candidate.Record{
		Identity:    id,
		DisplayName: name,
		RawText:     text,
		Contact:     candidate.Contact{Email: email, Phone: phone},
	}
}

func TestUniqueListIsNoop(t *testing.T) {
	t.Parallel()

	in := []*candidate.Record{
		record("a", "Ann Lee", "ann@x.io", "1", "Frontend engineer, React and TypeScript, five years."),
		record("b", "Bob Stone", "bob@x.io", "2", "Data analyst working with SQL, pandas and dashboards."),
		record("c", "Cid Moor", "", "", "Site reliability engineer: Kubernetes, Terraform, on-call."),
	}

	assert.Equal(t, in, Deduplicate(in, DefaultConfig()))
}

func TestRules(t *testing.T) {
	t.Parallel()

	base := record("a", "Ann Lee", "Ann@x.io", "555", "Frontend engineer, React and TypeScript, five years at Acme.")

	cases := []struct {
		name string
		dup  *candidate.Record
		rule Rule
	}{
		{"identity", record("a", "Other", "", "", "unrelated text entirely"), RuleIdentity},
		{"email case-insensitive", record("b", "Other", "ann@X.IO", "", "unrelated text entirely"), RuleEmail},
		{"phone", record("c", "Other", "", "555", "unrelated text entirely"), RulePhone},
		{"name and content", record("d", "Ann  Lee", "", "", "Frontend engineer, React and TypeScript, five years at Acme!"), RuleNameAndContent},
		{"identical content", record("e", "Someone Else", "", "", "Frontend engineer, React and TypeScript, five years at Acme."), RuleIdenticalContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			kept, dups := Find([]*candidate.Record{base, tc.dup}, DefaultConfig())
			require.Len(t, kept, 1)
			assert.Same(t, base, kept[0])
			require.Len(t, dups, 1)
			assert.Equal(t, tc.rule, dups[0].Rule)
			assert.Equal(t, "a", dups[0].DuplicateOf)
		})
	}
}

func TestEmptyContactsDoNotCollide(t *testing.T) {
	t.Parallel()

	in := []*candidate.Record{
		record("a", "Ann", "", "", "Go developer with gRPC experience."),
		record("b", "Bob", "", "", "Nurse with ten years in emergency care."),
		record("c", "", "", "", ""),
		record("d", "", "", "", ""),
	}

	assert.Len(t, Deduplicate(in, DefaultConfig()), 4)
}

func TestCardinalityAndIdempotence(t *testing.T) {
	t.Parallel()

	a := record("a", "Ann", "ann@x.io", "", "Frontend engineer with React.")
	b := record("b", "Bob", "bob@x.io", "", "Backend engineer with Go and PostgreSQL.")
	in := []*candidate.Record{a, b, a, a, b}

	once := Deduplicate(in, DefaultConfig())
	assert.Len(t, once, 2)
	assert.Equal(t, []*candidate.Record{a, b}, once)
	assert.Equal(t, once, Deduplicate(once, DefaultConfig()))
}

func TestSameDocumentDifferentNames(t *testing.T) {
	t.Parallel()

	text := "John Smith\nSenior React developer\n8 years building web apps"
	contact := identity.Contact{Email: "john@smith.dev"}

	first := record(identity.Resolve(text, contact, ""), "John Smith", contact.Email, "", text)
	second := record(identity.Resolve("Senior React developer\n8 years   building web apps\nJohn Smith", contact, ""), "J. Smith", contact.Email, "", text)

	assert.Equal(t, first.Identity, second.Identity)

	kept, dups := Find([]*candidate.Record{first, second}, DefaultConfig())
	require.Len(t, kept, 1)
	assert.Equal(t, RuleIdentity, dups[0].Rule)
}

func TestInputNotModified(t *testing.T) {
	t.Parallel()

	a := record("a", "Ann", "", "", "x")
	in := []*candidate.Record{a, a}
	Deduplicate(in, DefaultConfig())
	assert.Len(t, in, 2)
}
