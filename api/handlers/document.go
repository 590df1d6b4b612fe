package handlers

import (
	"net/http"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Document exposes case exhibits stored with the asset store
type Document struct {
	Svc *services.DocumentService
}

// UploadSignatureHandler signs a direct upload into the case's folder
func (d Document) UploadSignatureHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sig, err := d.Svc.UploadSignature(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// AddDocumentHandler records an uploaded file against the case
func (d Document) AddDocumentHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var in services.DocumentInput
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doc, err := d.Svc.AddDocument(ctx, caseID, actor(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// DocumentsHandler lists the documents of a case
func (d Document) DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	docs, err := d.Svc.ListDocuments(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// DeleteDocumentHandler removes a document and its stored file
func (d Document) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "document_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := d.Svc.DeleteDocument(ctx, id, actor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
