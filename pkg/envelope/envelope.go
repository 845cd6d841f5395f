package envelope

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// TimeLayout é o formato ISO-8601 (UTC, milissegundos) usado em todo o envelope.
const TimeLayout = "2006-01-02T15:04:05.000Z"

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Envelope é o wrapper uniforme de sucesso/erro devolvido por todo endpoint
// simulado e pelo client.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"requestId"`

	// Status é o status HTTP indicado pelo handler. Não é serializado.
	Status int `json:"-"`
}

// OK monta um envelope de sucesso.
func OK(data interface{}, message ...string) Envelope {
	return Envelope{
		Success:   true,
		Data:      data,
		Message:   first(message),
		Timestamp: Now(),
		RequestID: NewRequestID(),
	}
}

// Fail monta um envelope de falha.
func Fail(err string, message ...string) Envelope {
	return Envelope{
		Success:   false,
		Error:     err,
		Message:   first(message),
		Timestamp: Now(),
		RequestID: NewRequestID(),
	}
}

// WithStatus devolve uma cópia do envelope com o status HTTP indicado.
func (e Envelope) WithStatus(status int) Envelope {
	e.Status = status
	return e
}

// WithRequestID devolve uma cópia do envelope com outro request id.
func (e Envelope) WithRequestID(id string) Envelope {
	if id != "" {
		e.RequestID = id
	}
	return e
}

// HTTPStatus resolve o status da resposta sintetizada: sucesso é sempre
// 200; falha usa o status do handler quando informado, senão 400.
func (e Envelope) HTTPStatus() int {
	if e.Success {
		return 200
	}
	if e.Status != 0 {
		return e.Status
	}
	return 400
}

// As converte Data para o tipo T via JSON.
func As[T any](e Envelope) (T, error) {
	var out T
	if e.Data == nil {
		return out, nil
	}
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return out, fmt.Errorf("envelope: erro ao serializar data: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("envelope: data incompatível com %T: %w", out, err)
	}
	return out, nil
}

// Now devolve o instante atual no formato do envelope.
func Now() string {
	return FormatTime(time.Now())
}

// FormatTime formata t no layout ISO do envelope.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NewRequestID gera um id no formato req_{epoch-millis}_{9 chars base36}.
// A unicidade é probabilística; o id serve apenas para correlação de logs.
func NewRequestID() string {
	return "req_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + randomBase36(9)
}

func randomBase36(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = base36[time.Now().UnixNano()%int64(len(base36))]
			continue
		}
		out[i] = base36[idx.Int64()]
	}
	return string(out)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
