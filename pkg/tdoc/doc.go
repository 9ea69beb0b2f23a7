// Package tdoc is a client for the tDoc document-management service.
//
// # Overview
//
// A Client uploads, searches, retrieves and deletes documents and manages
// parcels on a remote tDoc instance. Every call goes through a single
// request executor (package rest) which:
//
//   - authenticates with basic auth, or with the JWT returned by the
//     service's login endpoint when the server offers one
//   - refreshes the token and retries exactly once when the service
//     answers with code 337 (token expired) or 338 (basic auth disabled)
//   - verifies downloaded content against the digest declared in its ETag
//   - returns every transport and service failure as a *rest.Error
//
// # Configuration Example
//
//	cfg := tdoc.DefaultConfig()
//	cfg.Address = "https://tdoc.example.com/"
//	cfg.Username = "user"
//	cfg.Password = os.Getenv("TDOC_PASSWORD")
//	cfg.Logger = hclog.Default()
//
//	client, err := tdoc.NewClient(cfg)
//
// # Errors
//
// Parameter validation fails with ErrInvalidParams before any request is
// made. Service errors can be inspected with errors.As and a *Error, or with
// rest.IsCode:
//
//	doc, err := client.DocumentMeta(ctx, tdoc.DocumentParams{ID: 123})
//	if rest.IsCode(err, rest.CodeDocumentMissing) {
//		...
//	}
//
// Downloads that fail verification return an error matching
// digest.ErrMismatch. Responses without the expected shape return an error
// matching ErrUnexpectedResponse.
//
// A Client is safe for concurrent use.
package tdoc
