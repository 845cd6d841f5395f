package insurance

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/router"
	"github.com/raywall/insurance-sim/pkg/store"
)

// ProcessPaymentInput é o corpo de POST /payments/process.
type ProcessPaymentInput struct {
	PolicyID string  `json:"policyId" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Method   string  `json:"method" validate:"required,oneof=credit_card debit_card pix boleto bank_transfer"`
	// PaymentID liquida um pagamento pendente existente em vez de criar um novo.
	PaymentID string `json:"paymentId"`
}

// PaymentResult é devolvido pelo processamento.
type PaymentResult struct {
	TransactionID string       `json:"transactionId"`
	Status        string       `json:"status"`
	Payment       store.Record `json:"payment"`
}

// processPayment simula a liquidação de um pagamento da apólice. Apólices
// canceladas ou expiradas recusam o pagamento.
func (b *Backend) processPayment(_ context.Context, req *router.Request) envelope.Envelope {
	body, ok := req.BodyMap()
	if !ok {
		return badRequest("Request body must be a JSON object")
	}
	var in ProcessPaymentInput
	if err := b.validateInput(body, &in); err != nil {
		return badRequest(err.Error())
	}
	if v := b.rules.Check("payments", ruleVars(req, "payments", body, nil)); v != nil {
		return envelope.Fail(v.Msg).WithStatus(v.Code)
	}

	policy := b.store.FindByID("policies", in.PolicyID)
	if policy == nil {
		return notFound("Policy")
	}
	switch status(policy) {
	case "cancelled", "expired":
		return envelope.Fail("Payment declined: policy is " + status(policy)).WithStatus(http.StatusUnprocessableEntity)
	}

	txn := "TXN-" + strings.ToUpper(uuid.NewString()[:8])
	paidAt := envelope.FormatTime(b.now())
	settle := store.Record{
		"status":        "completed",
		"transactionId": txn,
		"paidAt":        paidAt,
		"method":        in.Method,
		"amount":        in.Amount,
	}

	var payment store.Record
	if in.PaymentID != "" {
		existing := b.store.FindByID("payments", in.PaymentID)
		if existing == nil {
			return notFound("Payment")
		}
		if status(existing) == "completed" {
			return envelope.Fail("Payment already completed").WithStatus(http.StatusConflict)
		}
		payment = b.store.Update("payments", in.PaymentID, settle)
	} else {
		settle["policyId"] = in.PolicyID
		settle["policyNumber"] = policy["policyNumber"]
		payment = b.store.Create("payments", settle)
	}
	if payment == nil {
		return notFound("Payment")
	}

	// primeira parcela paga ativa a apólice pendente
	if status(policy) == "pending" {
		b.store.Update("policies", in.PolicyID, store.Record{"status": "active"})
	}

	b.logger.Info().Str("policy_id", in.PolicyID).Str("payment_id", payment.ID()).
		Str("transaction_id", txn).Float64("amount", in.Amount).Msg("pagamento processado")

	return envelope.OK(PaymentResult{
		TransactionID: txn,
		Status:        "completed",
		Payment:       payment,
	}, "Payment processed successfully")
}
