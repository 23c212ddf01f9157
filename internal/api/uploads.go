package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/collex/internal/models"
)

// readUpload reads the multipart file in field, or returns nil when the
// request carries none. At most limit+1 bytes are read so that oversized
// files are still recognised as such.
func readUpload(c *gin.Context, field string, limit int64) (*models.FileUpload, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil
	}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read form file %s: %w", field, err)
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open form file %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", field, err)
	}
	return &models.FileUpload{Filename: header.Filename, Data: data}, nil
}

// bindForm binds a JSON body or, for multipart requests, the form fields.
func bindForm(c *gin.Context, obj interface{}) error {
	if c.ContentType() == "multipart/form-data" {
		return c.ShouldBind(obj)
	}
	return c.ShouldBindJSON(obj)
}
