// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	txsSubmitted prometheus.Counter
	txsAccepted  prometheus.Counter
	txsRejected  prometheus.Counter

	commitTime metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	commitTime, err := metric.NewAverager(
		"vm_commit",
		"time spent committing transaction results",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		commitTime: commitTime,
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_submitted",
			Help:      "number of transactions submitted",
		}),
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_accepted",
			Help:      "number of transactions whose result was stored",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_rejected",
			Help:      "number of transactions that could not be executed",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsAccepted),
		r.Register(m.txsRejected),
	)
	return m, errs.Err
}
