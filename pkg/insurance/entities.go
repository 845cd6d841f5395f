package insurance

import "github.com/raywall/insurance-sim/pkg/store"

// Entity descreve uma coleção exposta via CRUD.
type Entity struct {
	Collection string
	// Label é usado nas mensagens ("Customer not found").
	Label        string
	SearchFields []string
	// newInput devolve um ponteiro para a struct validada no create.
	newInput func() interface{}
	// enrich completa campos derivados antes do create.
	enrich func(b *Backend, rec store.Record)
	seed   func() []store.Record
}

// CustomerInput são os campos obrigatórios de um cliente.
type CustomerInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

type PolicyInput struct {
	CustomerID string  `json:"customerId" validate:"required"`
	PolicyType string  `json:"policyType" validate:"required"`
	Premium    float64 `json:"premium" validate:"gte=0"`
	Coverage   float64 `json:"coverage" validate:"gte=0"`
}

type ClaimInput struct {
	PolicyID    string  `json:"policyId" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}

type AgentInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Region    string `json:"region"`
}

type PaymentInput struct {
	PolicyID string  `json:"policyId" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Method   string  `json:"method" validate:"required"`
}

// Entities lista as coleções CRUD na ordem de registro das rotas.
var Entities = []Entity{
	{
		Collection:   "customers",
		Label:        "Customer",
		SearchFields: []string{"firstName", "lastName", "email", "phone"},
		newInput:     func() interface{} { return &CustomerInput{} },
		enrich: func(_ *Backend, rec store.Record) {
			setDefault(rec, "status", "active")
		},
		seed: seedCustomers,
	},
	{
		Collection:   "policies",
		Label:        "Policy",
		SearchFields: []string{"policyNumber", "policyType", "customerName"},
		newInput:     func() interface{} { return &PolicyInput{} },
		enrich: func(b *Backend, rec store.Record) {
			setDefault(rec, "status", "pending")
			if id, _ := rec["customerId"].(string); id != "" {
				if c := b.store.FindByID("customers", id); c != nil {
					setDefault(rec, "customerName", fullName(c))
				}
			}
		},
		seed: seedPolicies,
	},
	{
		Collection:   "claims",
		Label:        "Claim",
		SearchFields: []string{"claimNumber", "description", "customerName"},
		newInput:     func() interface{} { return &ClaimInput{} },
		enrich: func(b *Backend, rec store.Record) {
			setDefault(rec, "status", "pending")
			if id, _ := rec["policyId"].(string); id != "" {
				if p := b.store.FindByID("policies", id); p != nil {
					setDefault(rec, "customerId", p["customerId"])
					setDefault(rec, "customerName", p["customerName"])
				}
			}
		},
		seed: seedClaims,
	},
	{
		Collection:   "agents",
		Label:        "Agent",
		SearchFields: []string{"firstName", "lastName", "email", "region"},
		newInput:     func() interface{} { return &AgentInput{} },
		enrich: func(_ *Backend, rec store.Record) {
			setDefault(rec, "status", "active")
		},
		seed: seedAgents,
	},
	{
		Collection:   "payments",
		Label:        "Payment",
		SearchFields: []string{"paymentNumber", "policyNumber", "method"},
		newInput:     func() interface{} { return &PaymentInput{} },
		enrich: func(b *Backend, rec store.Record) {
			setDefault(rec, "status", "pending")
			if id, _ := rec["policyId"].(string); id != "" {
				if p := b.store.FindByID("policies", id); p != nil {
					setDefault(rec, "policyNumber", p["policyNumber"])
				}
			}
		},
		seed: seedPayments,
	},
}

func setDefault(rec store.Record, key string, value interface{}) {
	if value == nil {
		return
	}
	if v, ok := rec[key]; !ok || v == nil || v == "" {
		rec[key] = value
	}
}

func fullName(r store.Record) string {
	first, _ := r["firstName"].(string)
	last, _ := r["lastName"].(string)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
