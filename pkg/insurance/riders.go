package insurance

import (
	"context"
	"strings"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/router"
)

func (b *Backend) availableRiders(_ context.Context, _ *router.Request) envelope.Envelope {
	out := make([]Rider, len(riderCatalog))
	copy(out, riderCatalog)
	return envelope.OK(out)
}

// ridersByPolicyType devolve os riders compatíveis com o tipo de apólice.
// Tipo sem riders resulta em lista vazia, não em erro.
func (b *Backend) ridersByPolicyType(_ context.Context, req *router.Request) envelope.Envelope {
	policyType := req.Param("type")
	out := make([]Rider, 0)
	for _, r := range riderCatalog {
		for _, t := range r.PolicyTypes {
			if strings.EqualFold(t, policyType) {
				out = append(out, r)
				break
			}
		}
	}
	return envelope.OK(out)
}
