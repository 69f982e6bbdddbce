package ports

import "context"

// AddressLookup is the remote address service. It receives a normalized
// 8-digit CEP and returns the response body untouched.
type AddressLookup interface {
	FetchAddress(ctx context.Context, cep string) ([]byte, error)
}
