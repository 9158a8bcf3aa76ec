// Package identity derives content-addressed candidate identifiers.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

const (
	prefix = "candidate"

	contentHashLen = 8
	metaHashLen    = 4
	fileHashLen    = 4

	// maxLines bounds how much of a document takes part in the content hash.
	maxLines = 50

	EmptyContent = "empty"
	EmptyMeta    = "nometa"
	EmptyFile    = "nofile"
)

// Contact holds the contact fields that take part in identity resolution.
type Contact struct {
	Email string
	Phone string
}

// Resolve returns candidate_<content>_<meta>_<file> for the given document.
// It never fails: empty inputs map to sentinel components.
func Resolve(rawText string, contact Contact, sourceFileName string) string {
	return strings.Join([]string{
		prefix,
		ContentHash(rawText),
		MetaHash(contact),
		FileHash(sourceFileName),
	}, "_")
}

// ContentHash hashes the normalized document text.
func ContentHash(rawText string) string {
	normalized := NormalizeText(rawText)
	if normalized == "" {
		return EmptyContent
	}
	return shortHash(normalized, contentHashLen)
}

// MetaHash hashes lowercased email and phone. Display names are deliberately
// left out so re-extracted names do not split one person into two records.
func MetaHash(contact Contact) string {
	email := strings.ToLower(strings.TrimSpace(contact.Email))
	phone := strings.ToLower(strings.TrimSpace(contact.Phone))
	if email == "" && phone == "" {
		return EmptyMeta
	}
	return shortHash(email+"|"+phone, metaHashLen)
}

// FileHash hashes the cleaned base name of the source file.
func FileHash(sourceFileName string) string {
	cleaned := CleanFileName(sourceFileName)
	if cleaned == "" {
		return EmptyFile
	}
	return shortHash(cleaned, fileHashLen)
}

// CleanFileName lowercases the base name and strips the resume_ prefix and .pdf suffix.
func CleanFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := strings.ToLower(filepath.Base(filepath.ToSlash(name)))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.ReplaceAll(base, "resume_", "")
	base = strings.ReplaceAll(base, ".pdf", "")
	return strings.TrimSpace(base)
}

// NormalizeText lowercases, collapses horizontal whitespace, strips characters
// other than letters, digits, '@', '.' and '-', then sorts the non-empty
// lines and keeps the first 50. Sorting makes the hash insensitive to line
// ordering differences between text-extraction passes.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(strings.ToLower(text), "\r\n", "\n")
	rawLines := strings.Split(text, "\n")

	lines := make([]string, 0, len(rawLines))
	for _, raw := range rawLines {
		line := normalizeLine(raw)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	sort.Strings(lines)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

func normalizeLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	pendingSpace := false
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '@', r == '.', r == '-':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}

	return b.String()
}

func shortHash(s string, n int) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:n]
}
