package pysrc

import (
	"strings"

	"docstitch/internal/domain"
)

// Units returns one record per documentable unit in pre-order: the module
// first, then every class, function and method, containers always ahead of
// their members. Slice index i corresponds to arena index i, so a record's
// position can be fed straight back into Snippet and Insert.
func (t *Tree) Units() []domain.SourceUnit {
	units := make([]domain.SourceUnit, 0, len(t.nodes))
	for _, n := range t.nodes {
		u := domain.SourceUnit{
			Kind:      n.kind,
			Name:      n.name,
			Signature: n.signature,
			Span:      n.span,
			Doc:       n.doc,
			Params:    n.params,
		}
		if n.doc != nil && (n.kind == domain.KindFunction || n.kind == domain.KindAsyncFunction) {
			u.ReturnHint = scanReturnHint(*n.doc)
			u.Raises = scanRaises(*n.doc)
		}
		units = append(units, u)
	}
	return units
}

// scanReturnHint finds a line whose trimmed text starts with "Returns:" and
// captures the following line. Best effort over docstring conventions; a
// docstring that doesn't follow them simply yields nothing.
func scanReturnHint(doc string) string {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "Returns:") {
			if i+1 < len(lines) {
				return strings.TrimSpace(lines[i+1])
			}
			return ""
		}
	}
	return ""
}

// scanRaises collects exception kinds from a "Raises:" block. Lines are
// captured until the first non-blank line that is not indented; each captured
// line is split at its first colon, or taken whole when no colon is present.
func scanRaises(doc string) []string {
	var raises []string
	collecting := false
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Raises:") {
			collecting = true
			continue
		}
		if !collecting {
			continue
		}
		if trimmed != "" && !strings.HasPrefix(line, " ") {
			break
		}
		if trimmed == "" {
			continue
		}
		if idx := strings.Index(trimmed, ":"); idx >= 0 {
			raises = append(raises, strings.TrimSpace(trimmed[:idx]))
		} else {
			raises = append(raises, trimmed)
		}
	}
	return raises
}
