package domain

import "context"

// Store groups the repositories that share one database handle. Inside Tx
// the callback receives a Store whose repositories run in the transaction;
// returning an error rolls everything back.
type Store interface {
	Users() UserRepository
	Books() BookRepository
	Checkouts() CheckoutRepository
	Tx(ctx context.Context, fn func(tx Store) error) error
}
