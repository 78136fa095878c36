package cart

import "context"

// RemoteCart is the server-side cart API.
//
// FetchCart returns the raw response body so that Normalize owns envelope
// handling. Mutation acknowledgements carry nothing the controller needs.
type RemoteCart interface {
	FetchCart(ctx context.Context) ([]byte, error)
	AddItem(ctx context.Context, productID string, quantity int) error
	UpdateItem(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
}

// Catalog is the product and category API used for backfill.
type Catalog interface {
	Product(ctx context.Context, productID string) (ProductDetail, error)
	Categories(ctx context.Context) ([]Category, error)
}

// PayloadStore is durable local storage for the checkout handoff.
type PayloadStore interface {
	Put(ctx context.Context, key string, value []byte) error
}

// Navigator moves the user to the checkout step once the payload is stored.
type Navigator interface {
	GoToCheckout(ctx context.Context, payloadKey string)
}
