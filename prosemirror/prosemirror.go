// Package prosemirror renders meeting notes stored as ProseMirror documents
// into Markdown.
package prosemirror

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/granola"
)

// Ensure Renderer implements granola.NotesRenderer at compile time.
var _ granola.NotesRenderer = (*Renderer)(nil)

// Renderer renders the notes of a document. It prefers the ProseMirror
// content of the last viewed panel, then the panel HTML, then the plain
// notes_markdown field.
type Renderer struct {
	// HTML converts panel HTML. Nil disables the HTML fallback.
	HTML granola.Converter
}

// NewRenderer creates a Renderer.
func NewRenderer(html granola.Converter) *Renderer {
	return &Renderer{HTML: html}
}

// RenderNotes returns the notes of doc as Markdown under a title heading,
// or an empty string when the document has no notes.
func (r *Renderer) RenderNotes(doc *granola.Document) (string, error) {
	var body string
	if doc.Panel != nil && len(doc.Panel.Content) > 0 {
		md, err := Convert(doc.Panel.Content)
		if err != nil {
			return "", err
		}
		body = md
	}
	if strings.TrimSpace(body) == "" && doc.Panel != nil && doc.Panel.HTML != "" && r.HTML != nil {
		md, err := r.HTML.Convert(doc.Panel.HTML)
		if err != nil {
			return "", fmt.Errorf("convert panel html: %w", err)
		}
		body = md
	}
	if strings.TrimSpace(body) == "" {
		body = doc.NotesMarkdown
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return "", nil
	}

	title := doc.Title
	if title == "" {
		title = "Untitled"
	}
	return "# " + title + "\n\n" + body + "\n", nil
}

type node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs"`
	Content []node         `json:"content"`
	Text    string         `json:"text"`
	Marks   []mark         `json:"marks"`
}

type mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

// Convert renders a ProseMirror JSON document as Markdown. Unknown node
// types render their children.
func Convert(raw []byte) (string, error) {
	var root node
	if err := json.Unmarshal(raw, &root); err != nil {
		return "", granola.Errorf(granola.EINVALID, "invalid ProseMirror document: %v", err)
	}
	if root.Type == "doc" {
		return renderBlocks(root.Content), nil
	}
	return strings.TrimSpace(renderBlock(root, "")), nil
}

// renderBlocks joins block nodes with blank lines.
func renderBlocks(nodes []node) string {
	var blocks []string
	for _, n := range nodes {
		if b := renderBlock(n, ""); strings.TrimSpace(b) != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderBlock(n node, indent string) string {
	switch n.Type {
	case "heading":
		level := min(max(intAttr(n.Attrs, "level", 1), 1), 6)
		return strings.Repeat("#", level) + " " + strings.TrimSpace(renderInline(n.Content))
	case "paragraph":
		return strings.TrimSpace(renderInline(n.Content))
	case "bulletList":
		return renderList(n, indent, false)
	case "orderedList":
		return renderList(n, indent, true)
	case "blockquote":
		return quote(renderBlocks(n.Content))
	case "codeBlock":
		return "```" + stringAttr(n.Attrs, "language") + "\n" + plainText(n.Content) + "\n```"
	case "horizontalRule":
		return "---"
	case "text", "hardBreak":
		return renderInline([]node{n})
	default:
		return renderBlocks(n.Content)
	}
}

// renderList renders list items, one per line, with nested lists indented
// under the text of their item.
func renderList(n node, indent string, ordered bool) string {
	var lines []string
	num := intAttr(n.Attrs, "start", 1)
	for _, item := range n.Content {
		if item.Type != "listItem" && item.Type != "taskItem" {
			continue
		}

		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		childIndent := indent + strings.Repeat(" ", len(marker))

		var text []string
		var nested []string
		for _, child := range item.Content {
			switch child.Type {
			case "bulletList":
				nested = append(nested, renderList(child, childIndent, false))
			case "orderedList":
				nested = append(nested, renderList(child, childIndent, true))
			default:
				if s := strings.TrimSpace(renderBlock(child, childIndent)); s != "" {
					text = append(text, s)
				}
			}
		}

		lines = append(lines, strings.TrimRight(indent+marker+strings.Join(text, " "), " "))
		for _, list := range nested {
			if list != "" {
				lines = append(lines, list)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func renderInline(nodes []node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case "text":
			b.WriteString(applyMarks(n.Text, n.Marks))
		case "hardBreak":
			b.WriteString("  \n")
		default:
			b.WriteString(renderInline(n.Content))
		}
	}
	return b.String()
}

// applyMarks wraps text in Markdown emphasis. Surrounding whitespace is
// kept outside the delimiters.
func applyMarks(text string, marks []mark) string {
	core := strings.TrimSpace(text)
	if core == "" || len(marks) == 0 {
		return text
	}
	start := strings.Index(text, core)
	lead, trail := text[:start], text[start+len(core):]

	var link string
	for _, m := range marks {
		if m.Type == "code" {
			core = "`" + core + "`"
		}
	}
	for _, m := range marks {
		switch m.Type {
		case "bold", "strong":
			core = "**" + core + "**"
		case "italic", "em":
			core = "*" + core + "*"
		case "strike":
			core = "~~" + core + "~~"
		case "link":
			link = stringAttr(m.Attrs, "href")
		}
	}
	if link != "" {
		core = "[" + core + "](" + link + ")"
	}
	return lead + core + trail
}

func plainText(nodes []node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case "text":
			b.WriteString(n.Text)
		case "hardBreak":
			b.WriteString("\n")
		default:
			b.WriteString(plainText(n.Content))
		}
	}
	return b.String()
}

func quote(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func intAttr(attrs map[string]any, key string, def int) int {
	if v, ok := attrs[key].(float64); ok {
		return int(v)
	}
	return def
}

func stringAttr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}
