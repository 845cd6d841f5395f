package insurance

import (
	"context"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/router"
)

func (b *Backend) getSettings(_ context.Context, _ *router.Request) envelope.Envelope {
	return envelope.OK(b.Settings())
}

// updateSettings faz merge raso do body sobre o documento atual.
func (b *Backend) updateSettings(_ context.Context, req *router.Request) envelope.Envelope {
	patch, ok := req.BodyMap()
	if !ok {
		return badRequest("Request body must be a JSON object")
	}

	b.settingsMu.Lock()
	for k, v := range patch {
		b.settings[k] = v
	}
	b.settingsMu.Unlock()

	return envelope.OK(b.Settings(), "Settings updated successfully")
}

// Settings devolve uma cópia do documento de configurações.
func (b *Backend) Settings() map[string]interface{} {
	b.settingsMu.Lock()
	defer b.settingsMu.Unlock()
	return deepCopy(b.settings)
}

func deepCopy(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]interface{}:
			out[k] = deepCopy(t)
		case []interface{}:
			cp := make([]interface{}, len(t))
			for i, item := range t {
				if sub, ok := item.(map[string]interface{}); ok {
					cp[i] = deepCopy(sub)
				} else {
					cp[i] = item
				}
			}
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
