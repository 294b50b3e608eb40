package fleet

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goliatone/go-fleetbridge/core"
)

// RequestUploadPolicy obtains a one-time policy for a signed document upload.
// The policy token, signature, and destination path must all be present.
func (c *Client) RequestUploadPolicy(ctx context.Context) (core.UploadPolicy, error) {
	decoded, err := c.getJSON(ctx, "/uploads/policies", nil)
	if err != nil {
		return core.UploadPolicy{}, err
	}
	policy := core.UploadPolicy{
		Policy:    readString(decoded["policy"]),
		Signature: readString(decoded["signature"]),
		Path:      readString(decoded["path"]),
	}
	if policy.Policy == "" || policy.Signature == "" || policy.Path == "" {
		return core.UploadPolicy{}, core.MalformedResponseError(
			"fleet: upload policy response is missing policy, signature, or path",
			nil,
		)
	}
	return policy, nil
}

// UploadDocument performs the signed upload of document bytes to the fixed
// storage endpoint, carrying policy, signature, path, and filename as query
// parameters. A response without a usable location URL is fatal: the attach
// step must never run on an unconfirmed upload.
func (c *Client) UploadDocument(ctx context.Context, policy core.UploadPolicy, filename string, data []byte) (core.UploadedDocument, error) {
	query := url.Values{}
	query.Set("policy", policy.Policy)
	query.Set("signature", policy.Signature)
	query.Set("path", policy.Path)
	query.Set("filename", filename)

	payload, err := c.do(ctx, http.MethodPost, c.uploadURL, query, data, "application/octet-stream")
	if err != nil {
		return core.UploadedDocument{}, err
	}
	decoded, err := decodeObject("/upload", payload)
	if err != nil {
		return core.UploadedDocument{}, err
	}

	location := readString(decoded["url"])
	if location == "" {
		location = readString(decoded["file_url"])
	}
	if location == "" {
		return core.UploadedDocument{}, core.MalformedResponseError(
			"fleet: upload confirmation has no location url",
			map[string]any{"filename": filename},
		)
	}
	name := readString(decoded["filename"])
	if name == "" {
		name = filename
	}
	return core.UploadedDocument{URL: location, Name: name}, nil
}
