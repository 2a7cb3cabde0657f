package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// LookupTotal counts barcode price lookups by outcome (resolved, not_found, error).
	LookupTotal *prometheus.CounterVec
	// RuleMatchTotal counts resolutions by winning rule tier; base_price when no rule applied.
	RuleMatchTotal *prometheus.CounterVec
	// CatalogCacheTotal counts catalog cache hits and misses.
	CatalogCacheTotal *prometheus.CounterVec
	// ScanCodesTotal counts decoded codes consumed from the scan channel.
	ScanCodesTotal prometheus.Counter
	// HistoryWritesTotal counts lookup history entries recorded.
	HistoryWritesTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		LookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_total",
			Help:      "Count of barcode price lookups by outcome.",
		}, []string{"result"})
		RuleMatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_match_total",
			Help:      "Count of price resolutions by winning rule tier.",
		}, []string{"tier"})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog cache hits and misses.",
		}, []string{"result"})
		ScanCodesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_codes_total",
			Help:      "Decoded codes consumed from the scan channel.",
		})
		HistoryWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "Lookup history entries recorded.",
		})

		registerDomain(reg, LookupTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LookupTotal = v
			}
		})
		registerDomain(reg, RuleMatchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RuleMatchTotal = v
			}
		})
		registerDomain(reg, CatalogCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogCacheTotal = v
			}
		})
		registerDomain(reg, ScanCodesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ScanCodesTotal = v
			}
		})
		registerDomain(reg, HistoryWritesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				HistoryWritesTotal = v
			}
		})
	})
}

func registerDomain(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
