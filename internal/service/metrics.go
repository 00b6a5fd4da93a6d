package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_results",
			Help:    "Number of products matched by a listing query",
			Buckets: []float64{0, 1, 5, 12, 25, 50, 100, 250, 1000},
		},
		[]string{"store"},
	)

	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_store_errors_total",
			Help: "Total number of failed product store operations",
		},
		[]string{"store", "operation"},
	)
)
