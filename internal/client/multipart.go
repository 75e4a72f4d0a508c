package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// FormField is one text part of a multipart body.
type FormField struct {
	Name  string
	Value string
}

// FilePart is the optional file part of a multipart body.
type FilePart struct {
	Field string
	File  Attachment
}

func filePart(field string, a *Attachment) *FilePart {
	if a == nil || a.Path == "" {
		return nil
	}
	return &FilePart{Field: field, File: *a}
}

func encodeMultipart(fields []FormField, file *FilePart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	if file != nil {
		src, err := os.Open(file.File.Path)
		if err != nil {
			return nil, "", fmt.Errorf("opening attachment: %w", err)
		}
		defer src.Close()

		name := file.File.Name
		if name == "" {
			name = filepath.Base(file.File.Path)
		}
		dst, err := w.CreateFormFile(file.Field, name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(dst, src); err != nil {
			return nil, "", fmt.Errorf("reading attachment: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
