package workspace

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/ragdesk/pkg/client"
)

// ListDocuments returns the documents of the current user.
func (s *Service) ListDocuments(ctx context.Context) ([]Document, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	var docs []Document
	if err := s.api.Do(ctx, client.Request{Path: "/documents"}, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument uploads one file for indexing.
func (s *Service) UploadDocument(ctx context.Context, name string, data []byte) (*Document, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return nil, errors.New("document needs a file name")
	}

	doc := &Document{}
	err := s.api.Upload(ctx, client.Upload{
		Path: "/documents/upload",
		Files: []client.File{{
			Field:       "file",
			Name:        name,
			ContentType: contentTypeFor(name),
			Data:        data,
		}},
	}, doc)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("document uploaded", "document_id", doc.ID, "filename", doc.Filename)
	return doc, nil
}

// DeleteDocument removes a document and its index entries.
func (s *Service) DeleteDocument(ctx context.Context, id int64) error {
	if err := s.requireSession(); err != nil {
		return err
	}

	return s.api.Do(ctx, client.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/documents/%d", id),
	}, nil)
}

func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
