package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ProfileData is the structured view of a resume produced by the extractor.
type ProfileData struct {
	Name            string   `json:"name"`
	CurrentPosition string   `json:"current_position"`
	Location        string   `json:"location"`
	Summary         string   `json:"summary"`
	Experiences     []string `json:"experiences"`
	Education       []string `json:"education"`
	Skills          []string `json:"skills"`
	Certifications  []string `json:"certifications"`
	Languages       []string `json:"languages"`
	Interests       []string `json:"interests"`
	// Extra holds keys outside the fields above, flattened to text.
	Extra map[string]string `json:"extra,omitempty"`
}

var profileKeys = map[string]bool{
	"name": true, "current_position": true, "location": true, "summary": true,
	"experiences": true, "education": true, "skills": true,
	"certifications": true, "languages": true, "interests": true,
}

// IsEmpty reports whether no known field carries any content. Extra is not
// considered.
func (p ProfileData) IsEmpty() bool {
	return p.Name == "" && p.CurrentPosition == "" && p.Location == "" && p.Summary == "" &&
		len(p.Experiences) == 0 && len(p.Education) == 0 && len(p.Skills) == 0 &&
		len(p.Certifications) == 0 && len(p.Languages) == 0 && len(p.Interests) == 0
}

// ParseProfileData decodes model output into ProfileData. It accepts bare JSON
// or JSON wrapped in a markdown code fence. List fields may be given either as
// arrays of strings or arrays of objects; objects are flattened to text.
func ParseProfileData(raw string) (ProfileData, error) {
	body := stripFence(raw)
	if body == "" {
		return ProfileData{}, fmt.Errorf("profile data is empty")
	}

	var loose map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &loose); err != nil {
		return ProfileData{}, fmt.Errorf("failed to decode profile data: %w", err)
	}

	p := ProfileData{
		Name:            scalar(loose["name"]),
		CurrentPosition: scalar(loose["current_position"]),
		Location:        scalar(loose["location"]),
		Summary:         scalar(loose["summary"]),
		Experiences:     list(loose["experiences"]),
		Education:       list(loose["education"]),
		Skills:          list(loose["skills"]),
		Certifications:  list(loose["certifications"]),
		Languages:       list(loose["languages"]),
		Interests:       list(loose["interests"]),
	}
	if p.IsEmpty() {
		return ProfileData{}, fmt.Errorf("profile data has no known fields")
	}
	for key, msg := range loose {
		if profileKeys[key] {
			continue
		}
		if s := flatten(msg); s != "" {
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[key] = s
		}
	}
	return p, nil
}

// Text renders the profile as labelled lines suitable for chunking.
func (p ProfileData) Text() string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	line("Name", p.Name)
	line("Current position", p.CurrentPosition)
	line("Location", p.Location)
	line("Summary", p.Summary)
	line("Experiences", strings.Join(p.Experiences, "; "))
	line("Education", strings.Join(p.Education, "; "))
	line("Skills", strings.Join(p.Skills, ", "))
	line("Certifications", strings.Join(p.Certifications, ", "))
	line("Languages", strings.Join(p.Languages, ", "))
	line("Interests", strings.Join(p.Interests, ", "))
	for _, key := range sortedKeys(p.Extra) {
		line(key, p.Extra[key])
	}
	return strings.TrimRight(b.String(), "\n")
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func scalar(msg json.RawMessage) string {
	if len(msg) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return flatten(msg)
}

func list(msg json.RawMessage) []string {
	if len(msg) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		if s := scalar(msg); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := scalar(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// flatten renders an arbitrary JSON value as "key: value" text.
func flatten(msg json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(msg, &v); err != nil {
		return ""
	}
	return flattenValue(v)
}

func flattenValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}:
		keys := sortedKeys(t)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := flattenValue(t[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, ", ")
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flattenValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
