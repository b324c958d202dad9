package domain

import "errors"

// ErrClusterNumberUnresolvable is returned when no node hostname matches
// ^ec(\d+)-inorch-tmf-proxy$ (§4.3.3). This is a configuration failure:
// the deploy must refuse rather than retry.
var ErrClusterNumberUnresolvable = errors.New("deployment: no node hostname matches the cluster-number pattern")

// ErrNodePortRangeInvalid is returned when the computed range falls
// outside [30000, 32767].
var ErrNodePortRangeInvalid = errors.New("deployment: cluster nodeport range falls outside [30000, 32767]")

// ErrNodePortExhausted is returned when the reserved range runs out of
// free ports before every chart slot has been assigned one (§4.3.4 step 4:
// no partial assignment).
var ErrNodePortExhausted = errors.New("deployment: nodeport range exhausted before all slots were assigned")

// ErrHelmOperationFailed wraps a non-zero Helm action result; fatal for
// the deployment per §4.3.8.
var ErrHelmOperationFailed = errors.New("deployment: helm operation failed")
