package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"
)

// ImportService uploads workbooks to the background job queue
type ImportService service

// QueueResponse is returned by POST /backgroundjobs/{kind}/queue
type QueueResponse struct {
	JobID string `json:"jobId" validate:"required"`
}

// Queue posts the workbook as multipart form data under "file" together with the
// given form fields. Empty field values are not sent.
func (s *ImportService) Queue(ctx context.Context, kind string, fields map[string]string, fileName string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fields[k] == "" {
			continue
		}
		if err := mw.WriteField(k, fields[k]); err != nil {
			return "", fmt.Errorf("writing form field %s: %w", k, err)
		}
	}

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("reading %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	resp, err := s.client.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        "/backgroundjobs/" + strings.Trim(kind, "/") + "/queue",
		Body:        &buf,
		ContentType: mw.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}

	var out QueueResponse
	if err := decodeBody(resp, &out); err != nil {
		return "", err
	}
	if err := validate.Struct(out); err != nil {
		return "", fmt.Errorf("%w: queue response: %v", ErrMalformedResponse, err)
	}
	return out.JobID, nil
}
