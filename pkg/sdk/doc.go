// Package sdk provides an HTTP client for the docdex document search
// and question-answering service.
//
// The client talks to a running docdex server over its JSON API and
// mirrors the service endpoints one to one:
//
//	client, _ := sdk.New("http://localhost:8000")
//
//	rebuilt, _ := client.RebuildIndex(ctx)
//	fmt.Println(rebuilt.NumDocuments)
//
//	res, _ := client.Query(ctx, sdk.QueryRequest{Q: "how do I rotate keys", PerPage: 5})
//	fmt.Println(res.Answer)
//
// Server-side failures are returned as *APIError values that unwrap to
// the exported sentinel errors, so callers can branch with errors.Is:
//
//	if _, err := client.RebuildIndex(ctx); errors.Is(err, sdk.ErrRebuildInProgress) {
//	    // another rebuild is running, try again later
//	}
//
// To embed the engine in-process instead of calling a server, use the
// root docdex package.
package sdk
