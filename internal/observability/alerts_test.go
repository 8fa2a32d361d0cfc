package observability

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertFile struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestOrderAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "orders.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var rules alertFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	if len(rules.Groups) == 0 {
		t.Fatal("expected at least one alert group")
	}

	var ordersGroup *alertGroup
	for i := range rules.Groups {
		if rules.Groups[i].Name == "orders" {
			ordersGroup = &rules.Groups[i]
			break
		}
	}
	if ordersGroup == nil {
		t.Fatal("orders alert group missing")
	}

	expected := map[string]struct {
		severity string
		runbook  string
	}{
		"OrderTransitionErrors": {severity: "critical", runbook: "docs/runbook-orders.md#transition-errors"},
		"LedgerPostFailures":    {severity: "warning", runbook: "docs/runbook-orders.md#ledger-post-failures"},
		"CustomerBalanceSkips":  {severity: "warning", runbook: "docs/runbook-orders.md#customer-balance-skips"},
	}

	if len(ordersGroup.Rules) != len(expected) {
		t.Fatalf("expected %d rules, got %d", len(expected), len(ordersGroup.Rules))
	}

	for _, rule := range ordersGroup.Rules {
		want, ok := expected[rule.Alert]
		if !ok {
			t.Fatalf("unexpected rule %q", rule.Alert)
		}
		if rule.Labels["severity"] != want.severity {
			t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
		}
		if rule.Annotations["runbook"] != want.runbook {
			t.Fatalf("rule %s runbook mismatch: %s", rule.Alert, rule.Annotations["runbook"])
		}
		if rule.Annotations["summary"] == "" || rule.Annotations["description"] == "" {
			t.Fatalf("rule %s must include summary and description annotations", rule.Alert)
		}
		if rule.Expr == "" {
			t.Fatalf("rule %s must define an expression", rule.Alert)
		}
		if rule.For == "" {
			t.Fatalf("rule %s must define a hold duration", rule.Alert)
		}
	}
}
