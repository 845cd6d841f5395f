package insurance

import (
	"context"
	"fmt"
	"sort"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/router"
)

// Insight é uma recomendação gerada a partir do estado do store.
type Insight struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"` // risk, opportunity, trend
	Severity    string  `json:"severity"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

const (
	highClaimsRatio = 60.0
	renewalWindow   = 60 // dias
)

// insights aplica regras fixas sobre os dados: não há modelo por trás.
func (b *Backend) insights(_ context.Context, _ *router.Request) envelope.Envelope {
	return envelope.OK(b.ComputeInsights())
}

// ComputeInsights devolve os insights ordenados por severidade.
func (b *Backend) ComputeInsights() []Insight {
	m := b.computeMetrics()
	out := make([]Insight, 0)

	if m.ClaimsRatio >= highClaimsRatio {
		out = append(out, Insight{
			ID: "claims-ratio", Type: "risk", Severity: "high",
			Title:       "High claims ratio",
			Description: fmt.Sprintf("Approved claims represent %.2f%% of active premium.", m.ClaimsRatio),
			Confidence:  0.9,
		})
	}
	if m.PendingClaims > 0 {
		out = append(out, Insight{
			ID: "pending-claims", Type: "risk", Severity: severityFor(m.PendingClaims, 3, 10),
			Title:       "Claims awaiting review",
			Description: fmt.Sprintf("%d claim(s) are pending review.", m.PendingClaims),
			Confidence:  1,
		})
	}

	failed := 0
	var failedAmount float64
	for _, p := range b.store.FindAll("payments") {
		if status(p) == "failed" {
			failed++
			failedAmount += number(p["amount"])
		}
	}
	if failed > 0 {
		out = append(out, Insight{
			ID: "failed-payments", Type: "risk", Severity: severityFor(failed, 2, 5),
			Title:       "Failed payments",
			Description: fmt.Sprintf("%d payment(s) failed, totaling %.2f.", failed, round2(failedAmount)),
			Confidence:  1,
		})
	}

	now := b.now()
	renewals := 0
	for _, p := range b.store.FindAll("policies") {
		if status(p) != "active" {
			continue
		}
		end, ok := parseDate(str(p["endDate"]))
		if !ok {
			continue
		}
		days := end.Sub(now).Hours() / 24
		if days >= 0 && days <= renewalWindow {
			renewals++
		}
	}
	if renewals > 0 {
		out = append(out, Insight{
			ID: "renewals", Type: "opportunity", Severity: "medium",
			Title:       "Upcoming renewals",
			Description: fmt.Sprintf("%d active policy(ies) expire in the next %d days.", renewals, renewalWindow),
			Confidence:  0.95,
		})
	}

	if m.TotalCustomers > 0 {
		withPolicy := make(map[string]bool)
		for _, p := range b.store.FindAll("policies") {
			withPolicy[str(p["customerId"])] = true
		}
		without := 0
		for _, c := range b.store.FindAll("customers") {
			if status(c) == "active" && !withPolicy[c.ID()] {
				without++
			}
		}
		if without > 0 {
			out = append(out, Insight{
				ID: "cross-sell", Type: "opportunity", Severity: "low",
				Title:       "Customers without policies",
				Description: fmt.Sprintf("%d active customer(s) have no policy yet.", without),
				Confidence:  0.8,
			})
		}
	}

	if top := b.topAgent(); top != "" {
		out = append(out, Insight{
			ID: "top-agent", Type: "trend", Severity: "low",
			Title:       "Top performing agent",
			Description: top + " leads in written premium.",
			Confidence:  0.85,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return severityRank[out[i].Severity] > severityRank[out[j].Severity]
	})
	return out
}

var severityRank = map[string]int{"high": 3, "medium": 2, "low": 1}

func severityFor(n, medium, high int) string {
	switch {
	case n >= high:
		return "high"
	case n >= medium:
		return "medium"
	}
	return "low"
}

func (b *Backend) topAgent() string {
	premium := make(map[string]float64)
	for _, p := range b.store.FindAll("policies") {
		premium[str(p["agentId"])] += number(p["premium"])
	}
	var (
		best  string
		value float64
	)
	for _, a := range b.store.FindAll("agents") {
		if v := premium[a.ID()]; v > value || (v == value && v > 0 && a.ID() < best) {
			best, value = a.ID(), v
		}
	}
	if best == "" {
		return ""
	}
	agent := b.store.FindByID("agents", best)
	if agent == nil {
		return ""
	}
	return fullName(agent)
}
