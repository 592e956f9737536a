package questionbank

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
)

// FallbackQuestion is returned whenever a role has no entry in the bank.
const FallbackQuestion = "Let's start with a general behavioral question: Tell me about yourself and why you applied for this role."

// Bank maps normalized role keys to categories of opening questions. It is
// loaded once at startup and read-only afterwards.
type Bank struct {
	roles map[string]map[string][]string
}

// New builds a bank from an in-memory mapping, dropping empty categories.
func New(roles map[string]map[string][]string) *Bank {
	cleaned := make(map[string]map[string][]string, len(roles))
	for role, categories := range roles {
		kept := make(map[string][]string, len(categories))
		for category, questions := range categories {
			if len(questions) == 0 {
				continue
			}
			kept[category] = append([]string(nil), questions...)
		}
		if len(kept) > 0 {
			cleaned[normalizeRole(role)] = kept
		}
	}
	return &Bank{roles: cleaned}
}

// Load reads the question bank artifact from disk. A missing or malformed
// file is not fatal to the caller; it should fall back to an empty bank.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var roles map[string]map[string][]string
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	return New(roles), nil
}

// Question picks an opening question for the role: a category uniformly at
// random, then a question from it, prefixed with the category name. Unknown
// roles get the fixed fallback.
func (b *Bank) Question(role string) string {
	categories, ok := b.roles[normalizeRole(role)]
	if !ok {
		return FallbackQuestion
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	category := names[rand.IntN(len(names))]
	questions := categories[category]
	question := questions[rand.IntN(len(questions))]
	return fmt.Sprintf("Let's try a %s question: %s", category, question)
}

// Roles lists the bank's role names in human-readable form, sorted.
func (b *Bank) Roles() []string {
	out := make([]string, 0, len(b.roles))
	for key := range b.roles {
		out = append(out, titleCase(key))
	}
	sort.Strings(out)
	return out
}

// normalizeRole makes lookups tolerant of casing and spacing:
// "Software Engineer" and "software_engineer" hit the same key.
func normalizeRole(role string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(role)), " ", "_")
}

func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
