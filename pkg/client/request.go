package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"strings"
)

// Request describes one logical JSON call. It is consumed once; the retry
// after a refresh reuses the encoded body.
type Request struct {
	// Method defaults to GET, or POST when Body is set.
	Method string

	// Path is joined onto the client's base URL.
	Path string

	Query url.Values

	// Header holds extra headers. Authorization and Content-Type are owned by
	// the client and ignored here.
	Header http.Header

	// Body is encoded as JSON when non-nil.
	Body any
}

func (r Request) method() string {
	if r.Method != "" {
		return r.Method
	}
	if r.Body != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

// encode marshals the body once; nil means no body.
func (r Request) encode() ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, &Error{Message: "encoding request body", Err: err}
	}
	return data, nil
}

// File is one file part of an Upload.
type File struct {
	// Field is the form field name, "file" when empty.
	Field string

	// Name is the filename sent to the server.
	Name string

	// ContentType defaults to application/octet-stream.
	ContentType string

	Data []byte
}

// Upload describes a multipart/form-data call.
type Upload struct {
	// Method defaults to POST.
	Method string
	Path   string
	Header http.Header

	// Fields are plain form values, written in key order.
	Fields map[string]string
	Files  []File
}

func (u Upload) method() string {
	if u.Method != "" {
		return u.Method
	}
	return http.MethodPost
}

func (u Upload) validate() error {
	for _, f := range u.Files {
		if f.Name == "" {
			return &Error{Message: "upload file has no name"}
		}
	}
	return nil
}

// encode writes a fresh multipart body and returns its boundary content type.
func (u Upload) encode() (string, *bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(u.Fields))
	for k := range u.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if err := w.WriteField(k, u.Fields[k]); err != nil {
			return "", nil, &Error{Message: "encoding multipart body", Err: err}
		}
	}

	for _, f := range u.Files {
		part, err := w.CreatePart(filePartHeader(f))
		if err != nil {
			return "", nil, &Error{Message: "encoding multipart body", Err: err}
		}
		if _, err := part.Write(f.Data); err != nil {
			return "", nil, &Error{Message: "encoding multipart body", Err: err}
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, &Error{Message: "encoding multipart body", Err: err}
	}

	return w.FormDataContentType(), buf, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(f File) textproto.MIMEHeader {
	field := f.Field
	if field == "" {
		field = "file"
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", contentType)
	return h
}

func newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		if b != nil {
			reader = bytes.NewReader(b)
		}
	case *bytes.Buffer:
		reader = b
	default:
		return nil, &Error{Message: "unsupported request body"}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &Error{Message: "building request", Err: err}
	}
	return req, nil
}

func decodeJSON(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty response body")
		}
		return err
	}
	return nil
}
