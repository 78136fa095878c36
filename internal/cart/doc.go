// Package cart reconciles a locally held cart with the server-held cart.
//
// The Controller owns the canonical item list and the checkout selection for
// one actor session. Remote state arrives through Normalize, which accepts the
// known response envelopes and rejects everything else as ErrMalformedResponse.
// Mutations follow a snapshot, remote call, replace discipline: state is read
// under the controller mutex, the lock is dropped for the network call, and
// the acknowledged result is applied under the mutex again. Local state only
// changes after the server acknowledges, except for the quantity update whose
// line total is recomputed locally instead of waiting for a re-fetch.
//
// # Ownership of prices
//
// The money package is the single source of truth for every price the user
// sees or pays. Server totals (CartMeta.ServerTotal, CartItem.TotalPrice before
// the first local edit) are advisory and never feed the checkout amount.
//
// # Failure handling
//
// No operation panics or leaves state half-written. Each failure is a *Error
// with a Code (see errors.go) and, where the user should hear about it, a
// Notification sent to the injected Notifier.
package cart
