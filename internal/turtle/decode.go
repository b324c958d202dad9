package turtle

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/knakk/rdf"
)

// standardPrefixes is the namespace set every ICM document this system
// produces or consumes must bind (see the wire-format note this package is
// built against).
var standardPrefixes = map[string]string{
	"icm":    NSICM,
	"imo":    NSIMO,
	"log":    NSLog,
	"set":    NSSet,
	"quan":   NSQuan,
	"dct":    NSDCT,
	"geo":    NSGeo,
	"rdf":    NSRDF,
	"data5g": NSData5G,
	"met":    NSMet,
}

// Decode parses a Turtle document into a Graph.
func Decode(turtleData string) (*Graph, error) {
	g := NewGraph()
	for prefix, ns := range standardPrefixes {
		g.Bind(prefix, ns)
	}

	dec := rdf.NewTripleDecoder(strings.NewReader(turtleData), rdf.Turtle)
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding turtle: %w", err)
		}
		g.Add(Triple{
			Subject:   termFrom(tr.Subj),
			Predicate: tr.Pred.String(),
			Object:    termFrom(tr.Obj),
		})
	}
	return g, nil
}

func termFrom(t rdf.Term) Term {
	switch t.Type() {
	case rdf.TermLiteral:
		lit := t.(rdf.Literal)
		return literalTerm(lit.String(), lit.DataType().String(), lit.Lang())
	case rdf.TermBlank:
		return blankTerm(t.String())
	default:
		return iriTerm(t.String())
	}
}

// parseLiteralFloat parses a literal's lexical value as a float64, the way
// the original float(val_obj) coercion does: non-numeric literals are
// skipped rather than treated as a parse error.
func parseLiteralFloat(t Term) (float64, bool) {
	if !t.IsLiteral {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
