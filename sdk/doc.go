// Package vaultsdk provides a Go client for the custodial vault transactions
// API.
//
// The client transmits requests that were already built and signed: it never
// re-serializes a body, so the bytes on the wire are exactly the bytes covered
// by the x-signature header. Each call performs a single attempt; retry policy
// belongs to the caller.
//
// # Quick Start
//
//	client, err := vaultsdk.NewClient("https://api.fordefi.com", apiToken)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tx, err := client.CreateTransaction(ctx, &vaultsdk.SignedRequest{
//	    Path:      vaultsdk.TransactionsPath,
//	    Timestamp: ts,
//	    Signature: signature,
//	    Body:      body,
//	})
//
// # Errors
//
// Non-2xx responses and 2xx responses without an "id" return *Error carrying
// the HTTP status and the verbatim response body. Transport failures return
// *NetworkError.
//
// # TLS
//
//	// Trust a private CA (e.g. behind a TLS-intercepting proxy)
//	client, err := vaultsdk.NewClient(addr, token,
//	    vaultsdk.WithCACert("/etc/ssl/private-ca.pem"),
//	)
package vaultsdk
