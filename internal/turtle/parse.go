package turtle

import "sort"

// FindDeploymentInfo parses a Turtle document and extracts the chart URL
// and application name from its DeploymentExpectation's Context. It returns
// (nil, nil) — not an error — when no DeploymentExpectation, no Context, or
// a required Context property is absent, matching the "or none" contract.
func FindDeploymentInfo(turtleData string) (*DeploymentInfo, error) {
	g, err := Decode(turtleData)
	if err != nil {
		return nil, err
	}

	expectation := findNodeByType(g, NSData5G+"DeploymentExpectation")
	if expectation == "" {
		return nil, nil
	}

	context := findContextForExpectation(g, expectation)
	if context == "" {
		return nil, nil
	}

	descriptor := extractDataProperty(g, context, "DeploymentDescriptor")
	application := extractDataProperty(g, context, "Application")
	if descriptor == "" || application == "" {
		return nil, nil
	}

	return &DeploymentInfo{
		ChartURL:                 descriptor,
		Application:              application,
		HasDeploymentExpectation: true,
	}, nil
}

// findNodeByType returns the first subject with rdf:type typeIRI, or "".
func findNodeByType(g *Graph, typeIRI string) string {
	subjects := g.Subjects(NSRDF+"type", typeIRI)
	if len(subjects) == 0 {
		return ""
	}
	return subjects[0].Value
}

// findContextForExpectation walks the expectation's log:allOf references
// looking for one that is both an icm:Context and carries a
// data5g:DeploymentDescriptor.
func findContextForExpectation(g *Graph, expectation string) string {
	for _, obj := range g.Objects(expectation, NSLog+"allOf") {
		if obj.IsLiteral {
			continue
		}
		if g.HasType(obj.Value, NSICM+"Context") && g.Has(obj.Value, NSData5G+"DeploymentDescriptor", "") {
			return obj.Value
		}
	}
	return ""
}

// extractDataProperty reads the first data5g:<name> object off subject,
// as a literal or IRI's bare string value.
func extractDataProperty(g *Graph, subject, name string) string {
	objs := g.Objects(subject, NSData5G+name)
	if len(objs) == 0 {
		return ""
	}
	return objs[0].Value
}

// extractObjectiveName extracts the local name from a target-property IRI,
// e.g. data5g:p99-token-target -> p99-token-target.
func extractObjectiveName(propertyIRI string) string {
	return localName(propertyIRI)
}

// ParseDeploymentExpectationObjectives finds every Condition linked to the
// DeploymentExpectation via log:allOf, and for each one whose forAll node
// carries a quan:smaller constraint, extracts the objective name and value,
// converting ms to s. It returns an empty map, not an error, when nothing
// is found.
func ParseDeploymentExpectationObjectives(turtleData string) (map[string]Objective, error) {
	g, err := Decode(turtleData)
	if err != nil {
		return nil, err
	}

	objectives := make(map[string]Objective)

	expectation := findNodeByType(g, NSData5G+"DeploymentExpectation")
	if expectation == "" {
		return objectives, nil
	}

	for _, obj := range g.Objects(expectation, NSLog+"allOf") {
		if obj.IsLiteral || !g.HasType(obj.Value, NSICM+"Condition") {
			continue
		}
		for _, forAll := range g.Objects(obj.Value, NSSet+"forAll") {
			if forAll.IsLiteral {
				continue
			}
			for _, targetProp := range g.Objects(forAll.Value, NSICM+"valuesOfTargetProperty") {
				name := extractObjectiveName(targetProp.Value)
				if name == "" {
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
					objectives[name] = convertToSeconds(value, unit)
				}
			}
		}
	}

	return objectives, nil
}

// extractValueAndUnit reads rdf:value and quan:unit off a value node.
func extractValueAndUnit(g *Graph, valueNode string) (value float64, unit string, ok bool) {
	for _, v := range g.Objects(valueNode, NSRDF+"value") {
		if f, isNum := parseLiteralFloat(v); isNum {
			value = f
			ok = true
		}
	}
	if !ok {
		return 0, "", false
	}
	for _, u := range g.Objects(valueNode, NSQuan+"unit") {
		if u.IsLiteral {
			unit = toLower(u.Value)
		}
	}
	return value, unit, true
}

// convertToSeconds applies the load-bearing ms->s conversion (§4.4): values
// tagged "ms" are divided by 1000; "s"/"sec"/"seconds" pass through; an
// unrecognized unit is assumed to already be seconds.
func convertToSeconds(value float64, unit string) Objective {
	seconds := value
	if unit == "ms" {
		seconds = value / 1000.0
	}
	return Objective{Value: seconds, Unit: unit, OriginalValue: value}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// FindAllExpectations classifies every Expectation node in the document
// into its network/deployment/reporting/unknown bucket.
func FindAllExpectations(turtleData string) (ne, de *Expectation, re, unknown []*Expectation, err error) {
	g, decErr := Decode(turtleData)
	if decErr != nil {
		return nil, nil, nil, nil, decErr
	}
	return findAllExpectationsInGraph(g)
}

func findAllExpectationsInGraph(g *Graph) (ne, de *Expectation, re, unknown []*Expectation, err error) {
	kinds := []struct {
		kind    ExpectationKind
		typeIRI string
	}{
		{ExpectationDeployment, NSData5G + "DeploymentExpectation"},
		{ExpectationNetwork, NSData5G + "NetworkExpectation"},
		{ExpectationReporting, NSData5G + "ReportingExpectation"},
	}

	seen := map[string]bool{}
	for _, k := range kinds {
		for _, subj := range g.Subjects(NSRDF+"type", k.typeIRI) {
			seen[subj.Value] = true
			exp := buildExpectation(g, subj.Value, k.kind)
			switch k.kind {
			case ExpectationDeployment:
				de = exp
			case ExpectationNetwork:
				ne = exp
			case ExpectationReporting:
				re = append(re, exp)
			}
		}
	}

	// Anything typed as an Expectation subclass this package doesn't
	// recognize is surfaced as unknown rather than silently dropped.
	for _, subj := range g.Subjects(NSRDF+"type", "") {
		if seen[subj.Value] {
			continue
		}
		for _, t := range g.Objects(subj.Value, NSRDF+"type") {
			if isExpectationLikeType(t.Value) {
				unknown = append(unknown, buildExpectation(g, subj.Value, ExpectationUnknown))
				seen[subj.Value] = true
			}
		}
	}

	sort.Slice(re, func(i, j int) bool { return re[i].IRI < re[j].IRI })
	return ne, de, re, unknown, nil
}

func isExpectationLikeType(typeIRI string) bool {
	name := localName(typeIRI)
	return len(name) > len("Expectation") && name[len(name)-len("Expectation"):] == "Expectation"
}

func buildExpectation(g *Graph, iri string, kind ExpectationKind) *Expectation {
	exp := &Expectation{IRI: iri, Kind: kind}
	if targets := g.Objects(iri, NSData5G+"target"); len(targets) > 0 {
		exp.Target = targets[0].Value
	}
	if descs := g.Objects(iri, NSDCT+"description"); len(descs) > 0 {
		exp.Description = descs[0].Value
	}
	exp.Members = g.ObjectValues(iri, NSLog+"allOf")
	return exp
}
