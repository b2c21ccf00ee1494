package service

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"library-api/internal/domain"
)

var circulationTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "library_circulation_total",
		Help: "Checkout and return attempts by outcome",
	},
	[]string{"op", "result"},
)

func init() { prometheus.MustRegister(circulationTotal) }

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = strings.ReplaceAll(domain.KindOf(err).String(), " ", "_")
	}
	circulationTotal.WithLabelValues(op, result).Inc()
}
