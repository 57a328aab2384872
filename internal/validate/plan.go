package validate

import (
	"os"
	"path/filepath"
	"regexp"
)

// planFilename is the plan document whose references are checked.
const planFilename = "PLAN.md"

// planRefPattern matches references to configuration paths.
var planRefPattern = regexp.MustCompile(
	`(?:skills|rules|hooks|contexts|templates)/[\w-]+`,
)

// checkPlanReferences reports PLAN.md references that resolve to nothing.
func (v *Validator) checkPlanReferences() {
	content, err := os.ReadFile(filepath.Join(v.cfg.Root, planFilename))
	if err != nil {
		v.warnf("PLAN.md not found")
		return
	}

	for _, ref := range uniqueReferences(string(content)) {
		if !v.referenceResolves(ref) {
			v.warnf("PLAN.md references %s but path not found", ref)
		}
	}

	v.okf("PLAN.md reference check complete")
}

// referenceResolves accepts a reference naming a path, a markdown file
// without its extension or a skill directory.
func (v *Validator) referenceResolves(ref string) bool {
	full := filepath.Join(v.cfg.Root, filepath.FromSlash(ref))

	return exists(full) || exists(full+".md") ||
		exists(filepath.Join(full, skillFilename))
}

// uniqueReferences returns the distinct references in order of first
// appearance.
func uniqueReferences(content string) []string {
	var (
		refs []string
		seen = make(map[string]bool)
	)
	for _, ref := range planRefPattern.FindAllString(content, -1) {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	return refs
}
