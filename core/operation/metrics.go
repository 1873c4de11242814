package operation

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/opcore"
)

const (
	reasonNoAccount = "no-account"
	reasonBadAuth   = "bad-auth"
)

var promInvalid = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "opcore_operation_invalid_total",
	Help: "total number of operations rejected by the shared checks",
}, []string{"reason"})

var promSyntheticFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "opcore_operation_synthetic_failure_total",
	Help: "total number of synthetic operations with an unexpected result",
}, []string{"kind", "code"})

var promExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "opcore_operation_executed_total",
	Help: "total number of operations executed per kind and outcome",
}, []string{"kind", "success"})

func init() {
	opcore.PromCollectors = append(opcore.PromCollectors, promInvalid,
		promSyntheticFailure, promExecuted)
}
