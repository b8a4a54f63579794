// Package api exposes the resource core over HTTP as JSON, one uniform
// handler per resource configured by its schema.
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CR-8/clubcore/pkg/apperrors"
	"github.com/CR-8/clubcore/pkg/observability/logger"
	"github.com/CR-8/clubcore/pkg/resource"
)

// Query parameter names reserved by the listing surface; everything else
// is treated as a filter criterion and validated against the schema.
var reservedParams = map[string]struct{}{
	"id":     {},
	"page":   {},
	"limit":  {},
	"sort":   {},
	"order":  {},
	"search": {},
}

// uploadFormField is the multipart form field carrying an uploaded file.
const uploadFormField = "file"

// maxUploadBytes bounds in-memory multipart parsing.
const maxUploadBytes = 32 << 20

// Handler serves one resource's HTTP surface.
type Handler struct {
	svc     *resource.Service
	storage resource.ObjectStore
	log     logger.Logger
}

// NewHandler creates a Handler. storage may be nil when the resource
// carries no uploaded files or object storage is disabled.
func NewHandler(svc *resource.Service, storage resource.ObjectStore, log logger.Logger) *Handler {
	return &Handler{svc: svc, storage: storage, log: log}
}

// Mount registers the resource routes under /{name}.
func (h *Handler) Mount(r gin.IRouter) {
	name := h.svc.Schema().Name
	group := r.Group("/" + name)
	group.GET("/get", h.Get)
	group.POST("/create", h.Create)
	group.PUT("/update", h.Update)
	group.DELETE("/delete", h.Delete)
	if h.svc.Schema().FileKeyField != "" {
		group.GET("/download", h.Download)
	}
}

// Get serves both single-record fetch (id supplied) and listing.
func (h *Handler) Get(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		doc, err := h.svc.Get(c.Request.Context(), id, resource.GetOptions{CountView: true})
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, doc)
		return
	}
	h.list(c)
}

func (h *Handler) list(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	criteria := resource.Criteria{
		Fields: map[string]string{},
		Search: c.Query("search"),
	}
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		if len(values) > 0 {
			criteria.Fields[key] = values[0]
		}
	}

	listing, err := h.svc.List(c.Request.Context(), resource.Query{
		Criteria:  criteria,
		SortKey:   c.Query("sort"),
		SortOrder: c.Query("order"),
		Page:      page,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	body := gin.H{
		h.svc.Schema().Name: listing.Records,
		"total":             listing.Total,
		"stats":             listing.Stats.Values,
	}
	if len(listing.Stats.Failed) > 0 {
		body["statsFailed"] = listing.Stats.Failed
	}
	if listing.Pagination != nil {
		body["pagination"] = listing.Pagination
	}
	c.JSON(http.StatusOK, body)
}

// Create accepts a JSON body or a multipart form with an optional file.
func (h *Handler) Create(c *gin.Context) {
	fields, upload, err := h.parseCreatePayload(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	doc, err := h.svc.Create(c.Request.Context(), fields, upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// Update applies an allow-listed partial update by id.
func (h *Handler) Update(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		respondError(c, h.log, apperrors.NewValidationError("id", "is required"))
		return
	}

	partial := map[string]interface{}{}
	if err := c.ShouldBindJSON(&partial); err != nil {
		respondError(c, h.log, apperrors.NewValidationError("", "request body must be a JSON object"))
		return
	}

	doc, err := h.svc.Update(c.Request.Context(), id, partial)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete removes a record by id, cleaning up its stored file first.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		respondError(c, h.log, apperrors.NewValidationError("id", "is required"))
		return
	}

	doc, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("%s deleted successfully", h.svc.Schema().Singular),
		"deletedRecord": doc,
	})
}

// Download returns a short-lived URL for a record's stored file. Used by
// private documents whose permanent URL is not publicly readable.
func (h *Handler) Download(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		respondError(c, h.log, apperrors.NewValidationError("id", "is required"))
		return
	}
	if h.storage == nil {
		respondError(c, h.log, apperrors.NewInternalError("object storage is not configured", nil))
		return
	}

	doc, err := h.svc.Get(c.Request.Context(), id, resource.GetOptions{})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	key, _ := doc[h.svc.Schema().FileKeyField].(string)
	if key == "" {
		respondError(c, h.log, apperrors.NewNotFoundError("file for "+h.svc.Schema().Singular, id))
		return
	}

	url, expiresAt, err := h.storage.PresignGetURL(c.Request.Context(), key, 0)
	if err != nil {
		respondError(c, h.log, apperrors.NewInternalError("failed to presign download", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresAt": expiresAt})
}

func (h *Handler) parseCreatePayload(c *gin.Context) (map[string]interface{}, *resource.Upload, error) {
	if c.ContentType() != "multipart/form-data" {
		fields := map[string]interface{}{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			return nil, nil, apperrors.NewValidationError("", "request body must be a JSON object")
		}
		return fields, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("", "malformed multipart form")
	}

	fields := map[string]interface{}{}
	for key, values := range form.Value {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	files := form.File[uploadFormField]
	if len(files) == 0 {
		return fields, nil, nil
	}
	upload, err := h.storeUpload(c, files[0], fields)
	if err != nil {
		return nil, nil, err
	}
	return fields, upload, nil
}

// storeUpload pushes the uploaded file to object storage. The returned
// Upload is the only channel through which a file key reaches a record;
// key and URL values in the form payload itself are ignored.
func (h *Handler) storeUpload(c *gin.Context, header *multipart.FileHeader, fields map[string]interface{}) (*resource.Upload, error) {
	schema := h.svc.Schema()
	if schema.FileKeyField == "" {
		return nil, apperrors.NewValidationError(uploadFormField, fmt.Sprintf("%s does not accept file uploads", schema.Name))
	}
	if h.storage == nil {
		return nil, apperrors.NewInternalError("object storage is not configured", nil)
	}
	if header.Size > maxUploadBytes {
		return nil, apperrors.NewValidationError(uploadFormField, "file exceeds the upload size limit")
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read upload", err)
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read upload", err)
	}

	contentType := header.Header.Get("Content-Type")
	key := fmt.Sprintf("%s/%s%s", schema.Name, uuid.NewString(), filepath.Ext(header.Filename))
	if err := h.storage.Upload(c.Request.Context(), key, payload, contentType); err != nil {
		return nil, apperrors.NewInternalError("failed to store upload", err)
	}

	if _, ok := schema.FieldByName("fileName"); ok {
		fields["fileName"] = header.Filename
	}
	if _, ok := schema.FieldByName("fileSize"); ok {
		fields["fileSize"] = float64(len(payload))
	}
	if _, ok := schema.FieldByName("mimeType"); ok {
		fields["mimeType"] = contentType
	}
	return &resource.Upload{Key: key, URL: h.storage.PublicURL(key)}, nil
}

func parsePage(c *gin.Context) (resource.Page, error) {
	pageRaw := c.Query("page")
	limitRaw := c.Query("limit")
	if pageRaw == "" && limitRaw == "" {
		return resource.Page{}, nil
	}
	if pageRaw == "" || limitRaw == "" {
		return resource.Page{}, apperrors.NewInvalidArgumentError("page and limit must be supplied together")
	}

	page, err := strconv.Atoi(pageRaw)
	if err != nil || page < 1 {
		return resource.Page{}, apperrors.NewValidationError("page", "must be a positive integer")
	}
	limit, err := strconv.Atoi(limitRaw)
	if err != nil || limit < 1 {
		return resource.Page{}, apperrors.NewValidationError("limit", "must be a positive integer")
	}
	return resource.Page{Page: page, Limit: limit}, nil
}
