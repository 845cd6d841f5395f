package insurance

import (
	"context"
	"net/http"
	"strings"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/router"
	"github.com/raywall/insurance-sim/pkg/store"
)

// Register publica todas as rotas do backend sob prefix (ex: "/api").
// As rotas específicas vêm antes do CRUD genérico.
func (b *Backend) Register(reg *router.Registry, prefix string) {
	p := "/" + strings.Trim(prefix, "/")
	if p == "/" {
		p = ""
	}

	reg.Register(http.MethodGet, p+"/health", b.health)
	reg.Register(http.MethodGet, p+"/dashboard/metrics", b.dashboardMetrics)
	reg.Register(http.MethodGet, p+"/dashboard/performance", b.dashboardPerformance)
	reg.Register(http.MethodGet, p+"/dashboard/recent-activity", b.recentActivity)
	reg.Register(http.MethodGet, p+"/settings", b.getSettings)
	reg.Register(http.MethodPut, p+"/settings", b.updateSettings)
	reg.Register(http.MethodGet, p+"/ai/insights", b.insights)
	reg.Register(http.MethodPost, p+"/documents/upload", b.uploadDocument)
	reg.Register(http.MethodGet, p+"/riders/available", b.availableRiders)
	reg.Register(http.MethodGet, p+"/riders/policy-type/:type", b.ridersByPolicyType)
	reg.Register(http.MethodPost, p+"/payments/process", b.processPayment)

	for _, e := range Entities {
		base := p + "/" + e.Collection
		reg.Register(http.MethodGet, base, b.list(e))
		reg.Register(http.MethodPost, base, b.create(e))
		reg.Register(http.MethodGet, base+"/:id", b.get(e))
		reg.Register(http.MethodPut, base+"/:id", b.update(e))
		reg.Register(http.MethodPatch, base+"/:id", b.update(e))
		reg.Register(http.MethodDelete, base+"/:id", b.remove(e))
	}
}

func (b *Backend) health(_ context.Context, _ *router.Request) envelope.Envelope {
	counts := make(map[string]int)
	for _, name := range b.store.Collections() {
		counts[name] = b.store.Count(name)
	}
	return envelope.OK(map[string]interface{}{
		"status":      "healthy",
		"mode":        "simulated",
		"collections": counts,
		"time":        envelope.FormatTime(b.now()),
	})
}

// list aceita page, pageSize, search, status e policyType.
func (b *Backend) list(e Entity) router.HandlerFunc {
	return func(_ context.Context, req *router.Request) envelope.Envelope {
		records := b.store.Search(e.Collection, req.QueryString("search"), e.SearchFields)
		records = store.FilterRecords(records, map[string]interface{}{
			"status":     nonEmpty(req.QueryString("status")),
			"policyType": nonEmpty(req.QueryString("policyType")),
		})

		page := store.Paginate(records, req.QueryInt("page", 1), req.QueryInt("pageSize", store.DefaultPageSize))
		return envelope.OK(page)
	}
}

func (b *Backend) get(e Entity) router.HandlerFunc {
	return func(_ context.Context, req *router.Request) envelope.Envelope {
		rec := b.store.FindByID(e.Collection, req.Param("id"))
		if rec == nil {
			return notFound(e.Label)
		}
		return envelope.OK(rec)
	}
}

func (b *Backend) create(e Entity) router.HandlerFunc {
	return func(_ context.Context, req *router.Request) envelope.Envelope {
		body, ok := req.BodyMap()
		if !ok {
			return badRequest("Request body must be a JSON object")
		}
		if err := b.validateInput(body, e.newInput()); err != nil {
			return badRequest(err.Error())
		}
		if v := b.rules.Check(e.Collection, ruleVars(req, e.Collection, body, nil)); v != nil {
			return envelope.Fail(v.Msg).WithStatus(v.Code)
		}

		rec := store.Record(body)
		if e.enrich != nil {
			e.enrich(b, rec)
		}
		created := b.store.Create(e.Collection, rec)
		b.logger.Debug().Str("collection", e.Collection).Str("id", created.ID()).Msg("registro criado")
		return envelope.OK(created, e.Label+" created successfully")
	}
}

// update atende PUT e PATCH: ambos fazem merge raso do body.
func (b *Backend) update(e Entity) router.HandlerFunc {
	return func(_ context.Context, req *router.Request) envelope.Envelope {
		body, ok := req.BodyMap()
		if !ok {
			return badRequest("Request body must be a JSON object")
		}

		id := req.Param("id")
		current := b.store.FindByID(e.Collection, id)
		if current == nil {
			return notFound(e.Label)
		}

		merged := make(map[string]interface{}, len(current)+len(body))
		for k, v := range current {
			merged[k] = v
		}
		for k, v := range body {
			merged[k] = v
		}
		if v := b.rules.Check(e.Collection, ruleVars(req, e.Collection, merged, current)); v != nil {
			return envelope.Fail(v.Msg).WithStatus(v.Code)
		}

		updated := b.store.Update(e.Collection, id, store.Record(body))
		if updated == nil {
			return notFound(e.Label)
		}
		b.logger.Debug().Str("collection", e.Collection).Str("id", id).Msg("registro atualizado")
		return envelope.OK(updated, e.Label+" updated successfully")
	}
}

func (b *Backend) remove(e Entity) router.HandlerFunc {
	return func(_ context.Context, req *router.Request) envelope.Envelope {
		id := req.Param("id")
		if !b.store.Delete(e.Collection, id) {
			return notFound(e.Label)
		}
		b.logger.Debug().Str("collection", e.Collection).Str("id", id).Msg("registro removido")
		return envelope.OK(map[string]interface{}{"id": id}, e.Label+" deleted successfully")
	}
}

func ruleVars(req *router.Request, collection string, input, current map[string]interface{}) map[string]interface{} {
	vars := map[string]interface{}{
		"input":      input,
		"params":     req.PathParams,
		"query":      req.Query,
		"collection": collection,
		"method":     req.Method,
	}
	if current != nil {
		vars["current"] = map[string]interface{}(current)
	}
	return vars
}

func notFound(label string) envelope.Envelope {
	return envelope.Fail(label + " not found").WithStatus(http.StatusNotFound)
}

func badRequest(msg string) envelope.Envelope {
	return envelope.Fail(msg).WithStatus(http.StatusBadRequest)
}

// nonEmpty converte "" em nil: filtros nil são ignorados pelo store.
func nonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
