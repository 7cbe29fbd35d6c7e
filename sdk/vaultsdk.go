package vaultsdk

import (
	"context"
	"encoding/json"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.fordefi.com"

	// TransactionsPath is the create-transaction path. It is also the path
	// component of the signed payload.
	TransactionsPath = "/api/v1/transactions"

	// HeaderTimestamp carries the Unix-seconds timestamp of the signed payload.
	HeaderTimestamp = "x-timestamp"

	// HeaderSignature carries the base64 DER signature of the payload.
	HeaderSignature = "x-signature"

	// HeaderIdempotenceID lets the service deduplicate a resubmitted request.
	HeaderIdempotenceID = "x-idempotence-id"
)

// Client defines the interface for interacting with the vault API.
type Client interface {
	// CreateTransaction submits a signed transaction request.
	CreateTransaction(ctx context.Context, req *SignedRequest) (*Transaction, error)

	// GetTransaction fetches a transaction by its service-assigned ID.
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
}

// SignedRequest is a serialized request body together with its signature.
type SignedRequest struct {
	// Path is the request path that was signed (required).
	Path string

	// Timestamp is the Unix-seconds string that was signed (required).
	Timestamp string

	// Signature is the raw DER signature over "Path|Timestamp|Body" (required).
	Signature []byte

	// Body is the exact serialized body that was signed (required).
	Body []byte

	// IdempotenceID is sent as x-idempotence-id when set.
	IdempotenceID string
}

// Transaction is the subset of the service's transaction object this client
// reads. Raw holds the complete response body.
type Transaction struct {
	// ID is the service-assigned transaction identifier.
	ID string `json:"id"`

	// State is the lifecycle state, e.g. "waiting_for_approval", "completed".
	State string `json:"state"`

	// Type echoes the request type, e.g. "evm_transaction".
	Type string `json:"type"`

	// CreatedAt is the creation timestamp reported by the service.
	CreatedAt string `json:"created_at"`

	// Raw is the verbatim response body.
	Raw json.RawMessage `json:"-"`
}
