package insurance

import "github.com/raywall/insurance-sim/pkg/store"

// Fixtures carregadas em NewBackend e a cada Reload. Os ids seguem a mesma
// numeração de store.GenerateID, então o próximo create de cada coleção
// continua a sequência.

func seedCustomers() []store.Record {
	return []store.Record{
		{"id": "CUST-001", "firstName": "Ana", "lastName": "Souza", "email": "ana.souza@example.com", "phone": "+55 11 98765-4321", "status": "active", "city": "São Paulo", "createdAt": "2024-01-10T09:00:00.000Z", "updatedAt": "2024-06-01T10:15:00.000Z"},
		{"id": "CUST-002", "firstName": "Bruno", "lastName": "Lima", "email": "bruno.lima@example.com", "phone": "+55 21 99876-1234", "status": "active", "city": "Rio de Janeiro", "createdAt": "2024-02-03T14:30:00.000Z", "updatedAt": "2024-05-20T08:00:00.000Z"},
		{"id": "CUST-003", "firstName": "Carla", "lastName": "Mendes", "email": "carla.mendes@example.com", "phone": "+55 31 98888-7777", "status": "inactive", "city": "Belo Horizonte", "createdAt": "2024-02-18T11:45:00.000Z", "updatedAt": "2024-04-02T16:20:00.000Z"},
		{"id": "CUST-004", "firstName": "Diego", "lastName": "Ferreira", "email": "diego.ferreira@example.com", "phone": "+55 41 97777-6666", "status": "active", "city": "Curitiba", "createdAt": "2024-03-07T08:10:00.000Z", "updatedAt": "2024-06-10T12:00:00.000Z"},
		{"id": "CUST-005", "firstName": "Elisa", "lastName": "Rocha", "email": "elisa.rocha@example.com", "phone": "+55 51 96666-5555", "status": "active", "city": "Porto Alegre", "createdAt": "2024-03-22T17:25:00.000Z", "updatedAt": "2024-06-12T09:40:00.000Z"},
	}
}

func seedAgents() []store.Record {
	return []store.Record{
		{"id": "AGT-001", "firstName": "Marcos", "lastName": "Teixeira", "email": "marcos.teixeira@example.com", "phone": "+55 11 3333-1000", "region": "Sudeste", "status": "active", "rating": 4.8, "createdAt": "2023-11-01T09:00:00.000Z", "updatedAt": "2024-06-01T09:00:00.000Z"},
		{"id": "AGT-002", "firstName": "Patrícia", "lastName": "Alves", "email": "patricia.alves@example.com", "phone": "+55 21 3333-2000", "region": "Sudeste", "status": "active", "rating": 4.6, "createdAt": "2023-12-15T09:00:00.000Z", "updatedAt": "2024-05-28T09:00:00.000Z"},
		{"id": "AGT-003", "firstName": "Rafael", "lastName": "Gomes", "email": "rafael.gomes@example.com", "phone": "+55 51 3333-3000", "region": "Sul", "status": "active", "rating": 4.2, "createdAt": "2024-01-20T09:00:00.000Z", "updatedAt": "2024-05-15T09:00:00.000Z"},
		{"id": "AGT-004", "firstName": "Sofia", "lastName": "Martins", "email": "sofia.martins@example.com", "phone": "+55 31 3333-4000", "region": "Centro-Oeste", "status": "inactive", "rating": 3.9, "createdAt": "2024-02-01T09:00:00.000Z", "updatedAt": "2024-03-30T09:00:00.000Z"},
	}
}

func seedPolicies() []store.Record {
	return []store.Record{
		{"id": "POL-001", "policyNumber": "POL-2024-0001", "customerId": "CUST-001", "customerName": "Ana Souza", "agentId": "AGT-001", "policyType": "auto", "status": "active", "premium": 1850.0, "coverage": 85000.0, "startDate": "2024-01-15", "endDate": "2025-01-15", "riders": []interface{}{"RDR-001"}, "createdAt": "2024-01-15T10:00:00.000Z", "updatedAt": "2024-01-15T10:00:00.000Z"},
		{"id": "POL-002", "policyNumber": "POL-2024-0002", "customerId": "CUST-002", "customerName": "Bruno Lima", "agentId": "AGT-002", "policyType": "home", "status": "active", "premium": 1200.0, "coverage": 450000.0, "startDate": "2024-02-10", "endDate": "2025-02-10", "riders": []interface{}{}, "createdAt": "2024-02-10T10:00:00.000Z", "updatedAt": "2024-02-10T10:00:00.000Z"},
		{"id": "POL-003", "policyNumber": "POL-2024-0003", "customerId": "CUST-001", "customerName": "Ana Souza", "agentId": "AGT-001", "policyType": "life", "status": "active", "premium": 3400.0, "coverage": 1000000.0, "startDate": "2024-03-01", "endDate": "2034-03-01", "riders": []interface{}{"RDR-004"}, "createdAt": "2024-03-01T10:00:00.000Z", "updatedAt": "2024-03-01T10:00:00.000Z"},
		{"id": "POL-004", "policyNumber": "POL-2024-0004", "customerId": "CUST-003", "customerName": "Carla Mendes", "agentId": "AGT-003", "policyType": "health", "status": "expired", "premium": 5200.0, "coverage": 250000.0, "startDate": "2023-04-01", "endDate": "2024-04-01", "riders": []interface{}{}, "createdAt": "2023-04-01T10:00:00.000Z", "updatedAt": "2024-04-02T16:20:00.000Z"},
		{"id": "POL-005", "policyNumber": "POL-2024-0005", "customerId": "CUST-004", "customerName": "Diego Ferreira", "agentId": "AGT-002", "policyType": "auto", "status": "pending", "premium": 2100.0, "coverage": 120000.0, "startDate": "2024-06-15", "endDate": "2025-06-15", "riders": []interface{}{"RDR-001", "RDR-002"}, "createdAt": "2024-06-10T12:00:00.000Z", "updatedAt": "2024-06-10T12:00:00.000Z"},
	}
}

func seedClaims() []store.Record {
	return []store.Record{
		{"id": "CLM-001", "claimNumber": "CLM-2024-0001", "policyId": "POL-001", "customerId": "CUST-001", "customerName": "Ana Souza", "description": "Colisão traseira em cruzamento", "amount": 6200.0, "status": "approved", "incidentDate": "2024-04-12", "createdAt": "2024-04-13T09:30:00.000Z", "updatedAt": "2024-04-30T15:00:00.000Z"},
		{"id": "CLM-002", "claimNumber": "CLM-2024-0002", "policyId": "POL-002", "customerId": "CUST-002", "customerName": "Bruno Lima", "description": "Infiltração no telhado após tempestade", "amount": 3800.0, "status": "pending", "incidentDate": "2024-05-18", "createdAt": "2024-05-20T08:00:00.000Z", "updatedAt": "2024-05-20T08:00:00.000Z"},
		{"id": "CLM-003", "claimNumber": "CLM-2024-0003", "policyId": "POL-004", "customerId": "CUST-003", "customerName": "Carla Mendes", "description": "Internação hospitalar", "amount": 14500.0, "status": "rejected", "incidentDate": "2024-03-02", "createdAt": "2024-03-05T10:00:00.000Z", "updatedAt": "2024-03-25T10:00:00.000Z"},
		{"id": "CLM-004", "claimNumber": "CLM-2024-0004", "policyId": "POL-001", "customerId": "CUST-001", "customerName": "Ana Souza", "description": "Vidro quebrado", "amount": 900.0, "status": "pending", "incidentDate": "2024-06-01", "createdAt": "2024-06-01T10:15:00.000Z", "updatedAt": "2024-06-01T10:15:00.000Z"},
	}
}

func seedPayments() []store.Record {
	return []store.Record{
		{"id": "PAY-001", "paymentNumber": "PAY-2024-0001", "policyId": "POL-001", "policyNumber": "POL-2024-0001", "amount": 1850.0, "method": "credit_card", "status": "completed", "dueDate": "2024-01-15", "paidAt": "2024-01-15T10:05:00.000Z", "createdAt": "2024-01-15T10:05:00.000Z", "updatedAt": "2024-01-15T10:05:00.000Z"},
		{"id": "PAY-002", "paymentNumber": "PAY-2024-0002", "policyId": "POL-002", "policyNumber": "POL-2024-0002", "amount": 1200.0, "method": "pix", "status": "completed", "dueDate": "2024-02-10", "paidAt": "2024-02-10T11:00:00.000Z", "createdAt": "2024-02-10T11:00:00.000Z", "updatedAt": "2024-02-10T11:00:00.000Z"},
		{"id": "PAY-003", "paymentNumber": "PAY-2024-0003", "policyId": "POL-003", "policyNumber": "POL-2024-0003", "amount": 3400.0, "method": "bank_transfer", "status": "completed", "dueDate": "2024-03-01", "paidAt": "2024-03-02T09:00:00.000Z", "createdAt": "2024-03-02T09:00:00.000Z", "updatedAt": "2024-03-02T09:00:00.000Z"},
		{"id": "PAY-004", "paymentNumber": "PAY-2024-0004", "policyId": "POL-005", "policyNumber": "POL-2024-0005", "amount": 2100.0, "method": "boleto", "status": "pending", "dueDate": "2024-06-20", "createdAt": "2024-06-10T12:05:00.000Z", "updatedAt": "2024-06-10T12:05:00.000Z"},
		{"id": "PAY-005", "paymentNumber": "PAY-2024-0005", "policyId": "POL-004", "policyNumber": "POL-2024-0004", "amount": 5200.0, "method": "credit_card", "status": "failed", "dueDate": "2024-04-01", "createdAt": "2024-04-01T08:00:00.000Z", "updatedAt": "2024-04-01T08:05:00.000Z"},
	}
}

func seedSettings() map[string]interface{} {
	return map[string]interface{}{
		"companyName": "Insurance Admin",
		"currency":    "BRL",
		"locale":      "pt-BR",
		"timezone":    "America/Sao_Paulo",
		"notifications": map[string]interface{}{
			"email":           true,
			"sms":             false,
			"claimUpdates":    true,
			"paymentReminder": true,
		},
		"claims": map[string]interface{}{
			"autoApproveLimit": 1000.0,
			"requireDocuments": true,
		},
	}
}

// Rider é uma cobertura adicional vendida junto de uma apólice.
type Rider struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Premium     float64  `json:"premium"`
	PolicyTypes []string `json:"policyTypes"`
}

var riderCatalog = []Rider{
	{ID: "RDR-001", Name: "Roadside Assistance", Description: "Guincho e socorro 24h", Premium: 120, PolicyTypes: []string{"auto"}},
	{ID: "RDR-002", Name: "Rental Car", Description: "Carro reserva por até 15 dias", Premium: 180, PolicyTypes: []string{"auto"}},
	{ID: "RDR-003", Name: "Natural Disasters", Description: "Danos por enchente, vendaval e granizo", Premium: 240, PolicyTypes: []string{"home"}},
	{ID: "RDR-004", Name: "Critical Illness", Description: "Indenização por diagnóstico de doença grave", Premium: 560, PolicyTypes: []string{"life", "health"}},
	{ID: "RDR-005", Name: "Accidental Death", Description: "Capital adicional em caso de morte acidental", Premium: 310, PolicyTypes: []string{"life"}},
	{ID: "RDR-006", Name: "Dental Care", Description: "Cobertura odontológica básica", Premium: 95, PolicyTypes: []string{"health"}},
	{ID: "RDR-007", Name: "Business Interruption", Description: "Lucros cessantes após sinistro", Premium: 720, PolicyTypes: []string{"business", "home"}},
}
