package fs

import (
	"fmt"
	"regexp"
	"strings"

	"praxis"
)

// docFiles maps practice types to their markdown file names.
var docFiles = map[praxis.PracticeType]string{
	praxis.PracticePrompting: "prompting.md",
	praxis.PracticeParameter: "parameters.md",
	praxis.PracticePitfall:   "pitfalls.md",
	praxis.PracticeCost:      "cost_optimization.md",
}

// docTitles maps practice types to their document headings.
var docTitles = map[praxis.PracticeType]string{
	praxis.PracticePrompting: "Prompting Techniques",
	praxis.PracticeParameter: "Parameter Settings",
	praxis.PracticePitfall:   "Known Pitfalls",
	praxis.PracticeCost:      "Cost Optimization",
}

// ServiceSlug converts a service name to a directory-safe slug.
// Example: "Stable Diffusion XL" → "stable-diffusion-xl"
func ServiceSlug(service string) string {
	s := strings.ToLower(strings.TrimSpace(service))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// FormatPracticeDoc formats the records of one practice type as a
// markdown document with YAML frontmatter.
func FormatPracticeDoc(set *praxis.ServiceDocumentSet, typ praxis.PracticeType, records []praxis.PracticeRecord) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("service: ")
	b.WriteString(set.Service)
	b.WriteString("\ncategory: ")
	b.WriteString(set.Category)
	b.WriteString("\nupdated: ")
	b.WriteString(set.UpdatedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "# %s: %s\n\n", set.Service, docTitles[typ])

	for _, r := range records {
		fmt.Fprintf(&b, "- %s\n", r.Content)
		fmt.Fprintf(&b, "  (confidence: %.2f, sources: %s)\n", r.Confidence, strings.Join(r.SourceRefs, ", "))
	}
	return b.String()
}

// settingPattern matches key=value fragments inside parameter advice,
// e.g. "set temperature=0.2" or "cfg_scale = 7".
var settingPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*=\s*([^\s,;)]+)`)

// ExtractSettings pulls key=value pairs out of parameter records.
// When the same key appears in several records, the value from the
// record with the highest confidence wins.
func ExtractSettings(records []praxis.PracticeRecord) map[string]string {
	settings := make(map[string]string)
	confidence := make(map[string]float64)

	for _, r := range records {
		for _, m := range settingPattern.FindAllStringSubmatch(r.Content, -1) {
			key := strings.ToLower(m[1])
			if prev, ok := confidence[key]; ok && prev >= r.Confidence {
				continue
			}
			settings[key] = strings.TrimRight(m[2], ".")
			confidence[key] = r.Confidence
		}
	}
	return settings
}
