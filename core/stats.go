package core

import (
	"context"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// GetDashboard gathers the summary, hypervisor rollup and most frequent failures.
func GetDashboard(ctx context.Context, facts contract.FactStore, limit int) (schema.Dashboard, error) {
	var dash schema.Dashboard
	var err error

	if dash.Summary, err = facts.GetSummary(ctx); err != nil {
		return dash, err
	}
	if dash.Hypervisors, err = facts.GetHypervisorStats(ctx); err != nil {
		return dash, err
	}
	if dash.FrequentFailures, err = facts.GetFrequentFailures(ctx, limit); err != nil {
		return dash, err
	}
	decorateFrequentFailures(dash.FrequentFailures)
	return dash, nil
}

// decorateFrequentFailures classifies each test from the point of view of any one
// of the PRs it fails in, which sees PRCount-1 other PRs.
func decorateFrequentFailures(failures []schema.FrequentFailure) {
	for i := range failures {
		others := max(failures[i].PRCount-1, 0)
		failures[i].IsCommon = others >= contract.CommonFailureThreshold
		failures[i].Severity = schema.SeverityFor(failures[i].IsCommon)
	}
}
