package turtle

// SplitCombinedIntent partitions a combined intent (one carrying both a
// NetworkExpectation and a DeploymentExpectation) into two single-concern
// Turtle documents. Both outputs keep the original Intent IRI — the join
// key later observations use — and both retain the shared Intent-level
// metadata (handler, owner, description, priority). The two outputs never
// share an Expectation: one carries the NetworkExpectation, the other the
// DeploymentExpectation. Any other member of the Intent's log:allOf list (a
// ReportingExpectation, an unrecognized Expectation, or a non-Expectation
// node) is carried by neither output.
//
// inServ's own turtle_parser.py (the direct analogue of this function) was
// not present in the retrieval pack backing this component; the partition
// strategy below — closure from each Expectation node, re-attached to a
// copy of the Intent's own triples minus every log:allOf edge other than
// the one to that Expectation — follows the same graph-traversal style the rest of this
// package uses (subject/predicate indexed lookup, not pointer chasing).
func SplitCombinedIntent(turtleData string) (neTurtle, deTurtle string, err error) {
	g, err := Decode(turtleData)
	if err != nil {
		return "", "", err
	}

	intentIRI := findNodeByType(g, NSICM+"Intent")
	if intentIRI == "" {
		return "", "", ErrNoExpectations
	}

	ne, de, _, _, err := findAllExpectationsInGraph(g)
	if err != nil {
		return "", "", err
	}
	if ne == nil || de == nil {
		return "", "", ErrNoExpectations
	}

	neGraph := buildSubIntentGraph(g, intentIRI, ne)
	deGraph := buildSubIntentGraph(g, intentIRI, de)

	return RenderGraph(neGraph), RenderGraph(deGraph), nil
}

// buildSubIntentGraph copies the Intent node's own triples (dropping
// every log:allOf edge except the one to the kept Expectation) and appends
// the full closure of the kept Expectation.
func buildSubIntentGraph(g *Graph, intentIRI string, kept *Expectation) *Graph {
	sub := NewGraph()
	for prefix, ns := range g.Prefixes() {
		sub.Bind(prefix, ns)
	}

	for _, t := range g.bySubj[intentIRI] {
		if t.Predicate == NSLog+"allOf" && t.Object.Value != kept.IRI {
			continue
		}
		sub.Add(t)
	}

	for _, t := range g.Closure(kept.IRI) {
		sub.Add(t)
	}

	return sub
}
