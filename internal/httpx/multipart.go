package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Upload is an image attachment for multipart endpoints (gift, player,
// match-record).
type Upload struct {
	Filename string
	Reader   io.Reader
}

// postForm and patchForm build a multipart body from ordered fields plus an
// optional image part. fields preserve insertion order so request bodies are
// reproducible in tests.
type formField struct {
	key, value string
}

func buildForm(fields []formField, image *Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", f.key, err)
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", image.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, image.Reader); err != nil {
			return nil, "", fmt.Errorf("copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) postForm(ctx context.Context, path string, fields []formField, image *Upload, out any) error {
	body, contentType, err := buildForm(fields, image)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, url.Values{}, contentType, body, out)
}

func (c *Client) patchForm(ctx context.Context, path string, fields []formField, image *Upload, out any) error {
	body, contentType, err := buildForm(fields, image)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, url.Values{}, contentType, body, out)
}
