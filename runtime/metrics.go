// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	txsExecuted          prometheus.Counter
	txsFailed            prometheus.Counter
	instructionsExecuted prometheus.Counter
	instructionsFailed   prometheus.Counter
	invocations          prometheus.Counter

	executeTime metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	executeTime, err := metric.NewAverager(
		"runtime_execute",
		"time spent executing transactions",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		executeTime: executeTime,
		txsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "txs_executed",
			Help:      "number of transactions executed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "txs_failed",
			Help:      "number of transactions whose instructions failed",
		}),
		instructionsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "instructions_executed",
			Help:      "number of top-level instructions executed",
		}),
		instructionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "instructions_failed",
			Help:      "number of top-level instructions that returned an error",
		}),
		invocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "cross_program_invocations",
			Help:      "number of cross-program invocations",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsExecuted),
		r.Register(m.txsFailed),
		r.Register(m.instructionsExecuted),
		r.Register(m.instructionsFailed),
		r.Register(m.invocations),
	)
	return m, errs.Err
}
