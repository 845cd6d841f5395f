package insurance

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/router"
	"github.com/raywall/insurance-sim/pkg/store"
)

// StorageBaseURL é a base das URLs sintetizadas para documentos enviados.
const StorageBaseURL = "https://storage.insurance-sim.local/documents"

// Document é o descritor devolvido pelo upload.
type Document struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Size       int64             `json:"size"`
	Type       string            `json:"type"`
	UploadDate string            `json:"uploadDate"`
	URL        string            `json:"url"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// uploadDocument registra o descritor do arquivo recebido no campo "file".
// Os campos simples do formulário são guardados junto do documento.
func (b *Backend) uploadDocument(_ context.Context, req *router.Request) envelope.Envelope {
	form, ok := req.BodyMap()
	if !ok {
		return badRequest("Expected multipart/form-data body")
	}
	file, ok := form["file"].(router.FileInfo)
	if !ok {
		return badRequest("No file provided")
	}

	fields := make(map[string]string)
	for k, v := range form {
		if s, ok := v.(string); ok && k != "file" {
			fields[k] = s
		}
	}

	key := uuid.NewString()
	rec := store.Record{
		"name":       file.Name,
		"size":       file.Size,
		"type":       file.Type,
		"storageKey": key,
		"url":        StorageBaseURL + "/" + key + "/" + url.PathEscape(file.Name),
	}
	for k, v := range fields {
		if _, taken := rec[k]; !taken {
			rec[k] = v
		}
	}
	if !b.store.Has("documents") {
		return envelope.Fail("Document storage unavailable").WithStatus(http.StatusServiceUnavailable)
	}
	created := b.store.Create("documents", rec)

	doc := Document{
		ID:         created.ID(),
		Name:       file.Name,
		Size:       file.Size,
		Type:       file.Type,
		UploadDate: str(created[store.FieldCreatedAt]),
		URL:        str(created["url"]),
	}
	if len(fields) > 0 {
		doc.Fields = fields
	}
	b.logger.Debug().Str("id", doc.ID).Str("name", doc.Name).Int64("size", doc.Size).Msg("documento recebido")
	return envelope.OK(doc, "Document uploaded successfully")
}
