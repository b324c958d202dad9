// Package turtle parses and renders TM Forum Intent Common Model (ICM)
// documents carried as RDF/Turtle, and splits a combined intent into its
// single-concern network and deployment sub-intents.
package turtle

// Namespaces bound on every document this package reads or writes.
const (
	NSData5G = "http://5g4data.eu/5g4data#"
	NSICM    = "http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/"
	NSLog    = "http://tio.models.tmforum.org/tio/v3.6.0/LogicalOperators/"
	NSSet    = "http://tio.models.tmforum.org/tio/v3.6.0/SetOperators/"
	NSQuan   = "http://tio.models.tmforum.org/tio/v3.6.0/QuantityOntology/"
	NSIMO    = "http://tio.models.tmforum.org/tio/v3.6.0/IntentManagementOntology/"
	NSMet    = "http://5g4data.eu/met#"
	NSDCT    = "http://purl.org/dc/terms/"
	NSGeo    = "http://www.opengis.net/ont/geosparql#"
	NSRDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// ExpectationKind distinguishes the three ICM Expectation variants. It is a
// closed sum type: every switch over it must handle all three plus the
// unknown case explicitly (see §7 of the edge-case list this is grounded on).
type ExpectationKind int

const (
	ExpectationUnknown ExpectationKind = iota
	ExpectationDeployment
	ExpectationNetwork
	ExpectationReporting
)

func (k ExpectationKind) String() string {
	switch k {
	case ExpectationDeployment:
		return "DeploymentExpectation"
	case ExpectationNetwork:
		return "NetworkExpectation"
	case ExpectationReporting:
		return "ReportingExpectation"
	default:
		return "UnknownExpectation"
	}
}

// ConditionOperator enumerates the quantified-constraint operators a
// Condition's value node may carry.
type ConditionOperator int

const (
	OperatorUnknown ConditionOperator = iota
	OperatorSmaller
	OperatorLarger
	OperatorAtLeast
	OperatorAtMost
	OperatorGreater
	OperatorInRange
	OperatorMean
	OperatorMedian
)

var operatorLocalNames = map[string]ConditionOperator{
	"smaller": OperatorSmaller,
	"larger":  OperatorLarger,
	"atLeast": OperatorAtLeast,
	"atMost":  OperatorAtMost,
	"greater": OperatorGreater,
	"inRange": OperatorInRange,
	"mean":    OperatorMean,
	"median":  OperatorMedian,
}

// Intent is the typed, navigable view of a parsed ICM Intent document.
type Intent struct {
	IRI         string
	ID          string
	Description string
	Handler     string
	Owner       string
	Priority    string
	Members     []string // IRIs joined via log:allOf at the Intent level

	Network     *Expectation
	Deployment  *Expectation
	Reporting   []*Expectation
	Unknown     []*Expectation
	Conditions  map[string]*Condition  // keyed by Condition IRI
	Contexts    map[string]*Context    // keyed by Context IRI
}

// Expectation is one DeploymentExpectation, NetworkExpectation or
// ReportingExpectation node.
type Expectation struct {
	IRI         string
	Kind        ExpectationKind
	Target      string // data5g:deployment or data5g:network-slice
	Description string
	Members     []string // objects referenced via log:allOf
}

// Context carries the deployment or network-placement attributes attached
// to an Expectation.
type Context struct {
	IRI                  string
	Application          string
	DataCenter           string
	DeploymentDescriptor string
	AppliesToCustomer    string
	AppliesToRegion      string // WKT polygon literal, kept opaque
}

// ValueNode is one rdf:value/quan:unit pair attached to a Condition's
// constraint.
type ValueNode struct {
	Value float64
	Unit  string
}

// Condition is one quantified constraint over a target property.
type Condition struct {
	IRI                 string
	ID                  string
	Description         string
	TargetProperty      string // full IRI from icm:valuesOfTargetProperty
	ObjectiveName       string // local name extracted from TargetProperty
	Operator            ConditionOperator
	Values              []ValueNode // single entry except inRange (lower, upper)
}

// Objective is the result shape of parseDeploymentExpectationObjectives:
// the objective name mapped to its value after unit conversion.
type Objective struct {
	Value         float64
	Unit          string
	OriginalValue float64
}

// DeploymentInfo is the result shape of findDeploymentInfo.
type DeploymentInfo struct {
	ChartURL                 string
	Application              string
	HasDeploymentExpectation bool
}
