package turtle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RenderGraph serializes a Graph back to Turtle text, binding every prefix
// the graph carries and grouping statements by subject. It is a
// deterministic, minimal serializer — not a general Turtle writer — built
// only to round-trip what this package itself decodes (C1's parser is the
// only consumer of RDF on the way in; this is the only producer on the
// way out, for split-intent output).
func RenderGraph(g *Graph) string {
	var b strings.Builder

	prefixes := make([]string, 0, len(g.prefixes))
	for p := range g.prefixes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", p, g.prefixes[p])
	}
	b.WriteString("\n")

	bySubject := make(map[string][]Triple)
	var subjects []string
	for _, t := range g.triples {
		key := subjectKey(t.Subject)
		if _, ok := bySubject[key]; !ok {
			subjects = append(subjects, key)
		}
		bySubject[key] = append(bySubject[key], t)
	}
	sort.Strings(subjects)

	for _, subj := range subjects {
		triples := bySubject[subj]
		fmt.Fprintf(&b, "%s\n", compactTerm(g, triples[0].Subject))
		for i, t := range triples {
			sep := " ;"
			if i == len(triples)-1 {
				sep = " ."
			}
			fmt.Fprintf(&b, "  %s %s%s\n", compactIRI(g, t.Predicate), renderObject(g, t.Object), sep)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func subjectKey(t Term) string {
	if t.IsBlank {
		return "_:" + t.Value
	}
	return t.Value
}

func compactTerm(g *Graph, t Term) string {
	if t.IsBlank {
		return "_:" + t.Value
	}
	return compactIRI(g, t.Value)
}

func renderObject(g *Graph, t Term) string {
	if t.IsBlank {
		return "_:" + t.Value
	}
	if !t.IsLiteral {
		return compactIRI(g, t.Value)
	}
	if _, err := strconv.ParseFloat(t.Value, 64); err == nil {
		return t.Value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(t.Value)
	lit := `"` + escaped + `"`
	if t.Lang != "" {
		return lit + "@" + t.Lang
	}
	if t.Datatype != "" {
		return lit + "^^" + compactIRI(g, t.Datatype)
	}
	return lit
}

// compactIRI renders an IRI as prefix:local when a bound namespace
// matches, otherwise as a bracketed absolute IRI.
func compactIRI(g *Graph, iri string) string {
	bestPrefix, bestNS := "", ""
	for prefix, ns := range g.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			bestPrefix, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return "<" + iri + ">"
	}
	return bestPrefix + ":" + iri[len(bestNS):]
}
