package turtle

import "strings"

// ParseIntent builds the full typed Intent view: its Expectations, the
// Conditions and Contexts they reference, and the Intent-level metadata
// (handler, owner, priority, description). This is the representation C2
// classifies and splits, and C1's narrower contract functions
// (FindDeploymentInfo, FindAllExpectations, ParseDeploymentExpectationObjectives)
// are read-only projections of the same graph.
func ParseIntent(turtleData string) (*Intent, error) {
	g, err := Decode(turtleData)
	if err != nil {
		return nil, err
	}
	return parseIntentFromGraph(g)
}

func parseIntentFromGraph(g *Graph) (*Intent, error) {
	intentIRI := findNodeByType(g, NSICM+"Intent")
	intent := &Intent{
		IRI:        intentIRI,
		Conditions: make(map[string]*Condition),
		Contexts:   make(map[string]*Context),
	}

	if intentIRI != "" {
		intent.ID = localName(intentIRI)
		if v := extractDataProperty(g, intentIRI, "handler"); v != "" {
			intent.Handler = v
		}
		if v := first(g.Objects(intentIRI, NSDCT+"creator")); v != "" {
			intent.Owner = v
		}
		if v := first(g.Objects(intentIRI, NSICM+"priority")); v != "" {
			intent.Priority = v
		}
		if v := first(g.Objects(intentIRI, NSDCT+"description")); v != "" {
			intent.Description = v
		}
		intent.Members = g.ObjectValues(intentIRI, NSLog+"allOf")
	}

	ne, de, re, unknown, err := findAllExpectationsInGraph(g)
	if err != nil {
		return nil, err
	}
	intent.Network = ne
	intent.Deployment = de
	intent.Reporting = re
	intent.Unknown = unknown

	for _, exp := range allExpectations(ne, de, re, unknown) {
		for _, member := range exp.Members {
			if g.HasType(member, NSICM+"Condition") {
				cond, err := parseCondition(g, member)
				if err != nil {
					return nil, err
				}
				intent.Conditions[member] = cond
			}
			if g.HasType(member, NSICM+"Context") {
				intent.Contexts[member] = parseContext(g, member)
			}
		}
	}

	return intent, nil
}

func allExpectations(ne, de *Expectation, re, unknown []*Expectation) []*Expectation {
	var out []*Expectation
	if ne != nil {
		out = append(out, ne)
	}
	if de != nil {
		out = append(out, de)
	}
	out = append(out, re...)
	out = append(out, unknown...)
	return out
}

func first(terms []Term) string {
	if len(terms) == 0 {
		return ""
	}
	return terms[0].Value
}

func parseContext(g *Graph, iri string) *Context {
	return &Context{
		IRI:                  iri,
		Application:          extractDataProperty(g, iri, "Application"),
		DataCenter:           extractDataProperty(g, iri, "DataCenter"),
		DeploymentDescriptor: extractDataProperty(g, iri, "DeploymentDescriptor"),
		AppliesToCustomer:    extractDataProperty(g, iri, "appliesToCustomer"),
		AppliesToRegion:      extractDataProperty(g, iri, "appliesToRegion"),
	}
}

var simpleOperators = map[string]ConditionOperator{
	"smaller": OperatorSmaller,
	"larger":  OperatorLarger,
	"atLeast": OperatorAtLeast,
	"atMost":  OperatorAtMost,
	"greater": OperatorGreater,
	"mean":    OperatorMean,
	"median":  OperatorMedian,
}

// parseCondition extracts a Condition's id, description, target property
// and quantified constraint. A value node that carries both an inRange
// pair and a simple operator is rejected (ErrMixedOperators) rather than
// coerced to one or the other.
func parseCondition(g *Graph, iri string) (*Condition, error) {
	cond := &Condition{IRI: iri, ID: localName(iri)}
	if v := first(g.Objects(iri, NSDCT+"description")); v != "" {
		cond.Description = v
	}

	for _, forAll := range g.Objects(iri, NSSet+"forAll") {
		if forAll.IsLiteral {
			continue
		}
		if v := first(g.Objects(forAll.Value, NSICM+"valuesOfTargetProperty")); v != "" {
			cond.TargetProperty = v
			cond.ObjectiveName = extractObjectiveName(v)
		}

		inRangeObjs := g.Objects(forAll.Value, NSQuan+"inRange")
		var simpleOp ConditionOperator
		var simpleObjs []Term
		for name, op := range simpleOperators {
			if objs := g.Objects(forAll.Value, NSQuan+name); len(objs) > 0 {
				simpleOp = op
				simpleObjs = objs
				break
			}
		}

		switch {
		case len(inRangeObjs) > 0 && simpleOp != OperatorUnknown:
			return nil, ErrMixedOperators
		case len(inRangeObjs) > 0:
			if len(inRangeObjs) < 2 {
				return nil, ErrInRangeIncomplete
			}
			cond.Operator = OperatorInRange
			values := make([]ValueNode, 0, len(inRangeObjs))
			for _, vn := range inRangeObjs {
				if vn.IsLiteral {
					continue
				}
				value, unit, ok := extractValueAndUnit(g, vn.Value)
				if ok {
					values = append(values, ValueNode{Value: value, Unit: unit})
				}
			}
			if len(values) < 2 {
				return nil, ErrInRangeIncomplete
			}
			sortValueNodes(values)
			cond.Values = values
		case simpleOp != OperatorUnknown:
			cond.Operator = simpleOp
			for _, vn := range simpleObjs {
				if vn.IsLiteral {
					continue
				}
				value, unit, ok := extractValueAndUnit(g, vn.Value)
				if ok {
					cond.Values = append(cond.Values, ValueNode{Value: value, Unit: unit})
				}
			}
		}
	}

	return cond, nil
}

// sortValueNodes orders an inRange pair as (lower, upper). The Turtle
// encoding provides them as an ordered list in principle; lacking RDF
// collection (rdf:first/rdf:rest) support in the decoded graph, value
// order is used as the deterministic tiebreaker.
func sortValueNodes(values []ValueNode) {
	if len(values) >= 2 && values[0].Value > values[1].Value {
		values[0], values[1] = values[1], values[0]
	}
}

// ParseP99TokenTarget extracts the p99-token-target value from any
// Condition in the document, honoring ms->s conversion. It mirrors
// ParseDeploymentExpectationObjectives but scans every Condition rather
// than only those linked to a DeploymentExpectation.
func ParseP99TokenTarget(turtleData string) (float64, bool, error) {
	g, err := Decode(turtleData)
	if err != nil {
		return 0, false, err
	}
	for _, cond := range g.Subjects(NSRDF+"type", NSICM+"Condition") {
		for _, forAll := range g.Objects(cond.Value, NSSet+"forAll") {
			if forAll.IsLiteral {
				continue
			}
			for _, targetProp := range g.Objects(forAll.Value, NSICM+"valuesOfTargetProperty") {
				if !strings.Contains(targetProp.Value, "p99-token-target") {
					continue
				}
				for _, smaller := range g.Objects(forAll.Value, NSQuan+"smaller") {
					if smaller.IsLiteral {
						continue
					}
					value, unit, ok := extractValueAndUnit(g, smaller.Value)
					if !ok {
						continue
					}
					return convertToSeconds(value, unit).Value, true, nil
				}
			}
		}
	}
	return 0, false, nil
}
