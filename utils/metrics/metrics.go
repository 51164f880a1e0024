// Package metrics holds the prometheus collectors shared by the relationship
// engine, the view builder and the store layer. Every collector registers
// with the default registry, which is served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coursehub"

var (
	// RelationMutations counts Engine.Add / Engine.Remove calls by outcome.
	RelationMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relation_mutations_total",
		Help:      "Association add/remove operations by relation, op and result.",
	}, []string{"relation", "op", "result"})

	// RelationRetries counts retried store writes per side of an association.
	RelationRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relation_retries_total",
		Help:      "Transient failures retried while writing one side of an association.",
	}, []string{"relation", "side"})

	// PartialAssociations counts associations left with only the forward side
	// written.
	PartialAssociations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partial_associations_total",
		Help:      "Associations whose reverse write failed after the forward write landed.",
	}, []string{"relation"})

	// DanglingReferences counts references skipped during aggregation.
	DanglingReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dangling_references_total",
		Help:      "References that did not resolve while building a view.",
	}, []string{"kind"})

	// CASConflicts counts version conflicts seen by compare-and-swap stores.
	CASConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cas_conflicts_total",
		Help:      "Whole-document writes rejected because the document changed since read.",
	}, []string{"kind"})

	// CascadeCleanups counts reverse references removed after a user deletion.
	CascadeCleanups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_cleanups_total",
		Help:      "Reverse references cleaned after user deletion, by result.",
	}, []string{"result"})
)
