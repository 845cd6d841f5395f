package insurance

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/router"
	"github.com/raywall/insurance-sim/pkg/store"
	"github.com/shopspring/decimal"
)

// Métricas consolidadas exibidas no topo do dashboard.
type Metrics struct {
	TotalCustomers  int     `json:"totalCustomers"`
	ActiveCustomers int     `json:"activeCustomers"`
	TotalPolicies   int     `json:"totalPolicies"`
	ActivePolicies  int     `json:"activePolicies"`
	TotalClaims     int     `json:"totalClaims"`
	PendingClaims   int     `json:"pendingClaims"`
	TotalAgents     int     `json:"totalAgents"`
	ActiveAgents    int     `json:"activeAgents"`
	TotalPremium    float64 `json:"totalPremium"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingPayments float64 `json:"pendingPayments"`
	ClaimsPaid      float64 `json:"claimsPaid"`
	// ClaimsRatio = sinistros aprovados / prêmio ativo, em %.
	ClaimsRatio float64 `json:"claimsRatio"`
}

type AgentPerformance struct {
	AgentID        string  `json:"agentId"`
	Name           string  `json:"name"`
	Region         string  `json:"region"`
	PoliciesSold   int     `json:"policiesSold"`
	ActivePolicies int     `json:"activePolicies"`
	TotalPremium   float64 `json:"totalPremium"`
	Rating         float64 `json:"rating"`
}

type Performance struct {
	Agents             []AgentPerformance `json:"agents"`
	PolicyDistribution map[string]int     `json:"policyDistribution"`
	ClaimsByStatus     map[string]int     `json:"claimsByStatus"`
	PaymentsByMethod   map[string]float64 `json:"paymentsByMethod"`
}

type Activity struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

const maxActivityLimit = 100

// computeMetrics soma valores monetários em decimal para que os totais
// exibidos não acumulem erro de ponto flutuante.
func (b *Backend) computeMetrics() Metrics {
	var m Metrics
	var premium, paid, revenue, pending decimal.Decimal

	customers := b.store.FindAll("customers")
	m.TotalCustomers = len(customers)
	m.ActiveCustomers = countStatus(customers, "active")

	policies := b.store.FindAll("policies")
	m.TotalPolicies = len(policies)
	for _, p := range policies {
		if status(p) == "active" {
			m.ActivePolicies++
			premium = premium.Add(money(p["premium"]))
		}
	}

	claims := b.store.FindAll("claims")
	m.TotalClaims = len(claims)
	for _, c := range claims {
		switch status(c) {
		case "pending":
			m.PendingClaims++
		case "approved", "paid":
			paid = paid.Add(money(c["amount"]))
		}
	}

	agents := b.store.FindAll("agents")
	m.TotalAgents = len(agents)
	m.ActiveAgents = countStatus(agents, "active")

	for _, p := range b.store.FindAll("payments") {
		switch status(p) {
		case "completed":
			revenue = revenue.Add(money(p["amount"]))
		case "pending":
			pending = pending.Add(money(p["amount"]))
		}
	}

	if premium.IsPositive() {
		m.ClaimsRatio = paid.Div(premium).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	m.TotalPremium = premium.Round(2).InexactFloat64()
	m.TotalRevenue = revenue.Round(2).InexactFloat64()
	m.PendingPayments = pending.Round(2).InexactFloat64()
	m.ClaimsPaid = paid.Round(2).InexactFloat64()
	return m
}

func (b *Backend) dashboardMetrics(_ context.Context, _ *router.Request) envelope.Envelope {
	return envelope.OK(b.computeMetrics())
}

func (b *Backend) dashboardPerformance(_ context.Context, _ *router.Request) envelope.Envelope {
	perf := Performance{
		PolicyDistribution: make(map[string]int),
		ClaimsByStatus:     make(map[string]int),
		PaymentsByMethod:   make(map[string]float64),
	}

	byAgent := make(map[string]*AgentPerformance)
	for _, a := range b.store.FindAll("agents") {
		ap := &AgentPerformance{
			AgentID: a.ID(),
			Name:    fullName(a),
			Region:  str(a["region"]),
			Rating:  number(a["rating"]),
		}
		byAgent[a.ID()] = ap
	}

	for _, p := range b.store.FindAll("policies") {
		if t := str(p["policyType"]); t != "" {
			perf.PolicyDistribution[t]++
		}
		ap, ok := byAgent[str(p["agentId"])]
		if !ok {
			continue
		}
		ap.PoliciesSold++
		ap.TotalPremium += number(p["premium"])
		if status(p) == "active" {
			ap.ActivePolicies++
		}
	}
	for _, c := range b.store.FindAll("claims") {
		perf.ClaimsByStatus[status(c)]++
	}
	for _, p := range b.store.FindAll("payments") {
		if status(p) == "completed" {
			perf.PaymentsByMethod[str(p["method"])] += number(p["amount"])
		}
	}

	perf.Agents = make([]AgentPerformance, 0, len(byAgent))
	for _, ap := range byAgent {
		ap.TotalPremium = round2(ap.TotalPremium)
		perf.Agents = append(perf.Agents, *ap)
	}
	sort.Slice(perf.Agents, func(i, j int) bool {
		if perf.Agents[i].TotalPremium != perf.Agents[j].TotalPremium {
			return perf.Agents[i].TotalPremium > perf.Agents[j].TotalPremium
		}
		return perf.Agents[i].AgentID < perf.Agents[j].AgentID
	})
	return envelope.OK(perf)
}

// recentActivity lista as últimas alterações de todas as coleções, da mais
// recente para a mais antiga. ?limit (padrão 10, máximo 100).
func (b *Backend) recentActivity(_ context.Context, req *router.Request) envelope.Envelope {
	limit := req.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}
	limit = min(limit, maxActivityLimit)

	var items []Activity
	for _, e := range Entities {
		kind := singular(e.Collection)
		for _, r := range b.store.FindAll(e.Collection) {
			action := "updated"
			if str(r[store.FieldCreatedAt]) == str(r[store.FieldUpdatedAt]) {
				action = "created"
			}
			items = append(items, Activity{
				ID:          r.ID(),
				Type:        kind,
				Action:      action,
				Description: describeRecord(e, r, action),
				Timestamp:   str(r[store.FieldUpdatedAt]),
			})
		}
	}

	// timestamps ISO em UTC ordenam lexicograficamente
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Timestamp != items[j].Timestamp {
			return items[i].Timestamp > items[j].Timestamp
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []Activity{}
	}
	return envelope.OK(items)
}

func describeRecord(e Entity, r store.Record, action string) string {
	var subject string
	switch e.Collection {
	case "customers", "agents":
		subject = fullName(r)
	case "policies":
		subject = strings.TrimSpace(str(r["policyType"]) + " policy " + str(r["policyNumber"]))
	case "claims":
		subject = "claim " + firstNonEmpty(str(r["claimNumber"]), r.ID())
	case "payments":
		subject = "payment " + firstNonEmpty(str(r["paymentNumber"]), r.ID())
	}
	return strings.TrimSpace(e.Label + " " + action + ": " + subject)
}

func singular(collection string) string {
	switch collection {
	case "policies":
		return "policy"
	}
	return strings.TrimSuffix(collection, "s")
}

func countStatus(records []store.Record, want string) int {
	n := 0
	for _, r := range records {
		if status(r) == want {
			n++
		}
	}
	return n
}

func status(r store.Record) string {
	return strings.ToLower(str(r["status"]))
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func money(v interface{}) decimal.Decimal {
	return decimal.NewFromFloat(number(v))
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDate aceita "2006-01-02" e o formato ISO do store.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", envelope.TimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
