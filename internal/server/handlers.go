package server

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/shelf/internal/catalog"
	"github.com/lepinkainen/shelf/internal/errors"
	"github.com/lepinkainen/shelf/internal/importer"
	"github.com/lepinkainen/shelf/internal/record"
)

var errUploadTooLarge = stdErrors.New("upload too large")

// writeError maps err onto a status code and JSON body.
func writeError(c *gin.Context, err error) {
	if verr, ok := errors.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "problems": verr.Problems})
		return
	}
	switch {
	case stdErrors.Is(err, errUploadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.IsParseError(err), errors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bindPatch decodes the request body. An empty body is an empty patch.
func bindPatch(c *gin.Context) (record.Patch, error) {
	var p record.Patch
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return p, err
	}
	if len(body) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return p, errors.NewParseError("json", err.Error())
	}
	return p, nil
}

// readUpload returns the contents and name of the multipart "file" field.
// Request bodies larger than the upload limit are rejected.
func (h *Handler) readUpload(c *gin.Context) ([]byte, string, error) {
	limit := h.uploadLimit()
	if c.Request.ContentLength > limit {
		return nil, "", fmt.Errorf("%w: request body exceeds %d bytes", errUploadTooLarge, limit)
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stdErrors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("%w: request body exceeds %d bytes", errUploadTooLarge, limit)
		}
		return nil, "", fmt.Errorf("%w: file required", errors.ErrInvalidArgument)
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func (h *Handler) ListBooks(c *gin.Context) {
	records, err := h.Catalog.List(c.Request.Context(), catalog.Query{
		Q:     c.Query("q"),
		Field: c.Query("field"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetBook(c *gin.Context) {
	r, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CreateBook(c *gin.Context) {
	p, err := bindPatch(c)
	if err != nil {
		writeError(c, err)
		return
	}
	r, err := h.Catalog.CreateOne(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateBook(c *gin.Context) {
	p, err := bindPatch(c)
	if err != nil {
		writeError(c, err)
		return
	}
	r, err := h.Catalog.UpdateOne(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteBook(c *gin.Context) {
	ok, err := h.Catalog.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

func (h *Handler) PreviewImport(c *gin.Context) {
	data, name, err := h.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	outcomes, err := importer.Preview(data, name)
	if err != nil {
		writeError(c, err)
		return
	}
	valid, invalid := importer.Summary(outcomes)
	c.JSON(http.StatusOK, gin.H{"rows": outcomes, "valid": valid, "invalid": invalid})
}

// CommitImport stores every row of the upload, valid or not.
func (h *Handler) CommitImport(c *gin.Context) {
	data, name, err := h.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.Catalog.ImportFile(c.Request.Context(), data, name, false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Lookup(c *gin.Context) {
	result := h.Resolver.ResolveDetailed(c.Request.Context(), c.Param("isbn"))
	if !result.Found() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":   result.Metadata.Title,
		"authors": result.Metadata.Authors,
		"cover":   result.Metadata.Cover,
		"source":  result.Source,
	})
}
