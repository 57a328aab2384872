package validate

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roasbeef/agenthooks/internal/hooks"
)

// skillFilename is the document every skill directory must hold.
const skillFilename = hooks.SkillFilename

const (
	// minSkillLength is the trimmed length below which a skill is
	// reported as too short.
	minSkillLength = 50

	// minRuleLength is the trimmed length below which a rule is reported
	// as too short.
	minRuleLength = 20
)

// skippedDirs are never searched for markdown files.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// checkSkills checks every directory under skills/ for a usable skill.md.
func (v *Validator) checkSkills() {
	skillsDir := filepath.Join(v.cfg.Root, "skills")
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		v.errorf("skills/ directory not found")
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		rel := filepath.ToSlash(
			filepath.Join("skills", entry.Name(), skillFilename),
		)
		content, err := os.ReadFile(
			filepath.Join(skillsDir, entry.Name(), skillFilename),
		)
		if err != nil {
			v.errorf("skills/%s/ missing %s", entry.Name(),
				skillFilename)
			continue
		}

		v.checkDocument(rel, content, minSkillLength)
		v.okf("%s exists", rel)
	}
}

// checkRules checks every markdown file under rules/, recursively.
func (v *Validator) checkRules() {
	rulesDir := filepath.Join(v.cfg.Root, "rules")
	if info, err := os.Stat(rulesDir); err != nil || !info.IsDir() {
		v.errorf("rules/ directory not found")
		return
	}

	err := filepath.WalkDir(rulesDir, func(path string, d fs.DirEntry,
		err error) error {

		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel := v.relPath(path)
		v.checkDocument(rel, content, minRuleLength)
		v.okf("%s valid", rel)

		return nil
	})
	if err != nil {
		v.errorf("rules/: %v", err)
	}
}

// checkDocument reports a document that is too short, has malformed front
// matter or doesn't open with a top-level heading.
func (v *Validator) checkDocument(rel string, content []byte, minLen int) {
	if len(bytes.TrimSpace(content)) < minLen {
		v.warnf("%s seems too short", rel)
	}

	body := content
	if meta, rest, ok := splitFrontMatter(content); ok {
		if err := checkFrontMatter(meta); err != nil {
			v.warnf("%s has malformed front matter: %v", rel, err)
		}
		body = rest
	}

	if !startsWithTitle(body) {
		v.warnf("%s missing top-level heading", rel)
	}
}

// checkCodeBlocks reports fenced code blocks without a language tag in
// every markdown file of the tree.
func (v *Validator) checkCodeBlocks() {
	files, err := v.markdownFiles()
	if err != nil {
		v.errorf("markdown scan: %v", err)
	}

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			v.errorf("%s: %v", v.relPath(path), err)
			continue
		}

		for _, block := range findUntaggedCodeBlocks(content) {
			v.warnf("%s%s code block without language tag",
				v.relPath(path), block)
		}
	}

	v.okf("Code block validation complete")
}

// markdownFiles lists the markdown files under the root in lexical order.
func (v *Validator) markdownFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(v.cfg.Root, func(path string, d fs.DirEntry,
		err error) error {

		if err != nil {
			// An unreadable subtree is skipped, not fatal.
			if d != nil && d.IsDir() && path != v.cfg.Root {
				log.Debugf("Skipping %s: %v", path, err)
				return fs.SkipDir
			}
			return err
		}

		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(d.Name(), ".md") {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// relPath renders path relative to the root with forward slashes.
func (v *Validator) relPath(path string) string {
	rel, err := filepath.Rel(v.cfg.Root, path)
	if err != nil {
		return path
	}

	return filepath.ToSlash(rel)
}

// exists reports whether path exists.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
