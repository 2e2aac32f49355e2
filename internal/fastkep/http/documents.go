package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/documents"
	"github.com/aussiebroadwan/fastkep/pkg/fastkepsdk"
	"github.com/aussiebroadwan/fastkep/pkg/httpx"
)

type DocumentsHandler struct {
	Registry *documents.Registry
	Renderer *documents.Renderer
}

// HandleTemplates lists the available document types.
//
//	@Summary		List document templates
//	@Description	Returns every document type with its display name, description and required fields.
//	@Tags			Documents
//	@Produce		json
//	@Success		200	{object}	fastkepsdk.TemplatesResponse
//	@Router			/documents/templates [get].
func (h *DocumentsHandler) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	out := make(fastkepsdk.TemplatesResponse)
	for _, t := range h.Registry.List() {
		out[t.DocType] = fastkepsdk.TemplateInfo{
			Name:           t.Name,
			Description:    t.Description,
			RequiredFields: t.RequiredFields,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGenerate renders a document for the caller.
//
//	@Summary		Generate document
//	@Description	Renders the named document type from a flat JSON object of fields. full_name, generated_at, verification_code and verification_qr are always computed by the server.
//	@Tags			Documents
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		text/html
//	@Produce		application/pdf
//	@Param			doc_type	path		string						true	"Document type, e.g. ypefthini_dilosi or ypefthini-dilosi"
//	@Param			request		body		fastkepsdk.GenerateRequest	true	"Template fields"
//	@Success		200			{file}		binary						"Rendered document as an attachment"
//	@Failure		400			{object}	fastkepsdk.APIError			"invalid_request or missing_fields"
//	@Failure		401			{object}	fastkepsdk.APIError			"invalid_token"
//	@Failure		404			{object}	fastkepsdk.APIError			"unknown_doc_type"
//	@Failure		503			{object}	fastkepsdk.APIError			"temporarily_unavailable"
//	@Router			/documents/generate/{doc_type} [post].
func (h *DocumentsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		fastkepsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var raw map[string]any
	if err := httpx.DecodeJSON(w, r, &raw); err != nil {
		fastkepsdk.ErrInvalidRequest.WithDescription("body must be a JSON object").WriteError(w)
		return
	}
	fields, err := stringFields(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	art, err := h.Renderer.Render(r.Context(), r.PathValue("doc_type"), p.User, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Body)
}

// stringFields flattens a decoded JSON object into template fields. Scalars
// are formatted as text and null becomes empty; objects and arrays are
// rejected.
func stringFields(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = v
		case bool:
			out[k] = strconv.FormatBool(v)
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			out[k] = v.String()
		default:
			return nil, fastkepsdk.ErrInvalidRequest.WithDescription(fmt.Sprintf("field %q must be a string", k))
		}
	}
	return out, nil
}
