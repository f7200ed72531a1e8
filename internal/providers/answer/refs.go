package answer

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"github.com/sandevgo/vidquery/internal/core"
)

// refDefRe catches numbered reference definitions ("[1]: https://…") that a
// markdown parser swallows as link definitions instead of emitting as nodes.
var refDefRe = regexp.MustCompile(`(?m)^\s*\[(\d+)\]:\s*(\S+)`)

// ExtractMarkdownRefs pulls references out of provider answer text: inline
// [title](url) links via the markdown AST plus numbered "[n]: url"
// definitions. Duplicate links are dropped, first occurrence wins.
func ExtractMarkdownRefs(text string) []core.Reference {
	var refs []core.Reference
	seen := make(map[string]struct{})

	add := func(title, link string) {
		link = strings.TrimSpace(link)
		if link == "" {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		if title == "" {
			title = link
		}
		refs = append(refs, core.Reference{Title: title, Link: link})
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(text))
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			add(nodeText(link), string(link.Destination))
		}
		return ast.GoToNext
	})

	for _, m := range refDefRe.FindAllStringSubmatch(text, -1) {
		add("["+m[1]+"]", m[2])
	}

	return refs
}

func nodeText(node ast.Node) string {
	var sb strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if t, ok := n.(*ast.Text); ok && entering {
			sb.Write(t.Literal)
		}
		return ast.GoToNext
	})
	return strings.TrimSpace(sb.String())
}
