package validate

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// markdown is the shared parser. Only the core CommonMark blocks are
// needed.
var markdown = goldmark.New()

// parseMarkdown returns the document tree of source.
func parseMarkdown(source []byte) ast.Node {
	return markdown.Parser().Parse(text.NewReader(source))
}

// splitFrontMatter separates a leading YAML front matter block from the
// markdown body. ok is false when there is no front matter.
func splitFrontMatter(content []byte) (meta, body []byte, ok bool) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content, false
	}

	rest := content[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, content, false
	}

	meta = rest[:end+1]
	body = rest[end+len("\n---"):]

	// The closing delimiter must end its line.
	nl := bytes.IndexByte(body, '\n')
	switch {
	case nl < 0 && len(bytes.TrimSpace(body)) == 0:
		body = nil
	case nl >= 0 && len(bytes.TrimSpace(body[:nl])) == 0:
		body = body[nl+1:]
	default:
		return nil, content, false
	}

	return meta, body, true
}

// checkFrontMatter parses meta as a YAML mapping.
func checkFrontMatter(meta []byte) error {
	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return err
	}

	return nil
}

// startsWithTitle reports whether the first block of source is an ATX
// level-one heading ("# Title").
func startsWithTitle(source []byte) bool {
	doc := parseMarkdown(source)

	heading, ok := doc.FirstChild().(*ast.Heading)
	if !ok || heading.Level != 1 {
		return false
	}

	// An empty heading can only be written in ATX form.
	lines := heading.Lines()
	if lines.Len() == 0 {
		return true
	}

	// Setext headings ("Title\n=====") share the node type, so look at
	// the source line for the leading '#'.
	start := lines.At(0).Start
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	prefix := bytes.TrimLeft(source[lineStart:start], " ")

	return bytes.HasPrefix(prefix, []byte("#"))
}

// untaggedCodeBlock is a fenced code block without a language.
type untaggedCodeBlock struct {
	// line is the 1-based line of the opening fence, or 0 when the fence
	// can't be located.
	line int
}

// String renders the position suffix used in findings.
func (b untaggedCodeBlock) String() string {
	if b.line == 0 {
		return ""
	}

	return fmt.Sprintf(":%d", b.line)
}

// findUntaggedCodeBlocks returns every fenced code block in source whose
// opening fence has no info string.
func findUntaggedCodeBlocks(source []byte) []untaggedCodeBlock {
	var (
		blocks []untaggedCodeBlock

		// cursor is the offset up to which source has been consumed
		// by earlier blocks.
		cursor int
	)

	doc := parseMarkdown(source)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus,
		error) {

		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}

		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			if lines := n.Lines(); lines.Len() > 0 {
				cursor = max(cursor, lines.At(lines.Len()-1).Stop)
			}
			return ast.WalkContinue, nil
		}

		lines := fence.Lines()
		hasContent := lines.Len() > 0

		// Locate the end of the opening fence, recording its line when
		// the block is untagged.
		var openEnd int
		switch {
		case fence.Info != nil:
			openEnd = fence.Info.Segment.Stop

		case hasContent:
			// The fence sits on the line above the first content
			// line.
			openEnd = lines.At(0).Start
			blocks = append(blocks, untaggedCodeBlock{
				line: bytes.Count(source[:openEnd], []byte("\n")),
			})

		default:
			start, end, found := nextFenceLine(source, cursor)
			if !found {
				blocks = append(blocks, untaggedCodeBlock{})
				return ast.WalkSkipChildren, nil
			}
			openEnd = end
			blocks = append(blocks, untaggedCodeBlock{
				line: bytes.Count(source[:start], []byte("\n")) + 1,
			})
		}

		// Step past the closing fence so it isn't taken for the next
		// opening one.
		cursor = max(cursor, openEnd)
		if hasContent {
			cursor = max(cursor, lines.At(lines.Len()-1).Stop)
		}
		if _, end, found := nextFenceLine(source, cursor); found {
			cursor = end
		} else {
			cursor = len(source)
		}

		return ast.WalkSkipChildren, nil
	})

	return blocks
}

// nextFenceLine finds the first line at or after from that starts with a
// code fence marker, ignoring indentation and blockquote markers. It
// returns the line's start and end offsets.
func nextFenceLine(source []byte, from int) (int, int, bool) {
	for pos := from; pos < len(source); {
		end := len(source)
		if nl := bytes.IndexByte(source[pos:], '\n'); nl >= 0 {
			end = pos + nl
		}

		marker := bytes.TrimLeft(source[pos:end], " \t>")
		if bytes.HasPrefix(marker, []byte("```")) ||
			bytes.HasPrefix(marker, []byte("~~~")) {

			return pos, end, true
		}

		pos = end + 1
	}

	return 0, 0, false
}
