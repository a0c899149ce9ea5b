package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"stellar-hq/callisto/pkg/config"
	"stellar-hq/callisto/pkg/cpl/ast"
	"stellar-hq/callisto/pkg/policy/store"
)

func testMetrics(t *testing.T) (*PolicyStoreMetrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	cfg := config.MetricsConfig{Namespace: "callisto", Subsystem: "policy"}
	return NewPolicyStoreMetrics(cfg, registry), registry
}

func TestObserveSet(t *testing.T) {
	m, _ := testMetrics(t)

	s := store.New()
	static, err := ast.NewStaticPolicy("static", ast.EffectPermit,
		ast.AnyScope(), ast.AnyAction(), ast.AnyScope(), ast.BoolExpr(true))
	if err != nil {
		t.Fatalf("NewStaticPolicy() error = %v", err)
	}
	if err := s.AddStatic(static); err != nil {
		t.Fatalf("AddStatic() error = %v", err)
	}
	tmpl := ast.NewTemplate("t", ast.EffectPermit,
		ast.EqSlotScope(), ast.AnyAction(), ast.AnyScope(), ast.BoolExpr(true))
	if err := s.AddTemplate(tmpl); err != nil {
		t.Fatalf("AddTemplate() error = %v", err)
	}
	if _, err := s.Link("t", "l", ast.SlotEnv{ast.SlotPrincipal: ast.NewEntityUID("User", "a")}); err != nil {
		t.Fatalf("Link() error = %v", err)
	}

	m.ObserveSet(s)

	if got := testutil.ToFloat64(m.templates); got != 1 {
		t.Errorf("templates gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.staticPolicies); got != 1 {
		t.Errorf("static_policies gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.links); got != 2 {
		t.Errorf("links gauge = %v, want 2", got)
	}
}

func TestObserveReload(t *testing.T) {
	m, _ := testMetrics(t)

	m.ObserveReload(nil, 5*time.Millisecond)
	m.ObserveReload(errors.New("boom"), time.Millisecond)

	if got := testutil.ToFloat64(m.reloadsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("reloads_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.reloadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("reloads_total{error} = %v, want 1", got)
	}
}
