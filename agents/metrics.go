package agents

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var routerSelections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reactcoder_router_selections_total",
		Help: "Workflow router decisions by chosen workflow and outcome",
	},
	[]string{"workflow", "outcome"},
)

// RecordRouterSelection counts one routing decision. outcome is "selected"
// for a valid model choice and names the fallback reason otherwise.
func RecordRouterSelection(workflow, outcome string) {
	routerSelections.WithLabelValues(workflow, outcome).Inc()
}
