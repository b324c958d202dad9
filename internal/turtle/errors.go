package turtle

import "errors"

// ErrNoDeploymentExpectation names the case of a document with no
// data5g:DeploymentExpectation node. No function in this package returns
// it: FindDeploymentInfo reports that case as a nil result rather than an
// error, matching the "or none" contract.
var ErrNoDeploymentExpectation = errors.New("turtle: no DeploymentExpectation found")

// ErrInRangeIncomplete is returned when an inRange constraint carries fewer
// than two rdf:value terms. Parsing fails outright for this Condition; it
// is never silently coerced to a single-value operator.
var ErrInRangeIncomplete = errors.New("turtle: inRange constraint has fewer than two values")

// ErrMixedOperators is returned when a single Condition's value node
// carries both an inRange pair and a simple operator. The Open Question
// this resolves is answered by rejecting rather than coercing.
var ErrMixedOperators = errors.New("turtle: condition carries both inRange and a simple operator")

// ErrNoExpectations is returned by SplitCombinedIntent when the document
// has no icm:Intent node, or lacks either the DeploymentExpectation or the
// NetworkExpectation needed to split it.
var ErrNoExpectations = errors.New("turtle: no expectations found to split")
