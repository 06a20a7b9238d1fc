package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPricingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPricingMetrics(reg)
	metrics.ObserveResolve("cache", 250*time.Millisecond)
	metrics.IncQuote("ok")
	metrics.IncQuote("ok")
	metrics.IncQuote("")
	metrics.IncConflict("insert_tier")
	metrics.IncPublish("rejected")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "price_quotes_total", "outcome", "ok"); err != nil {
		t.Fatalf("fetch quotes: %v", err)
	} else if got != 2 {
		t.Fatalf("expected quotes=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "price_quotes_total", "outcome", "unknown"); err != nil {
		t.Fatalf("fetch unknown quotes: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "config_edit_conflicts_total", "operation", "insert_tier"); err != nil {
		t.Fatalf("fetch conflicts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected conflicts=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "config_publish_total", "result", "rejected"); err != nil {
		t.Fatalf("fetch publishes: %v", err)
	} else if got != 1 {
		t.Fatalf("expected publishes=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "price_resolve_duration_seconds", "source", "cache"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilPricingMetricsIsSafe(t *testing.T) {
	var metrics *PricingMetrics
	metrics.ObserveResolve("db", time.Second)
	metrics.IncQuote("ok")
	metrics.IncConflict("x")
	metrics.IncPublish("ok")

	NewPricingMetrics(nil).IncQuote("ok")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
