// Package harness runs YAML cart scenarios against the cart controller and
// compares the resulting step traces with golden files.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	actor: { id: cust-1, role: customer }
//	cart:
//	  shape: nested            # nested | flat | bare
//	  lines:
//	    - { id: ci-1, product: p-1, price: "100", discount: "10", quantity: 2, stock: 5 }
//	products:
//	  - { id: p-1, category: gpu }
//	categories:
//	  - { id: gpu, name: Graphics Cards }
//	failures:
//	  - { op: update_item, key: ci-1 }
//	steps:
//	  - do: load
//	  - do: update_quantity
//	    item: ci-1
//	    quantity: 9
//	    expect: VALIDATION_REJECTED
//	assertions:
//	  - { type: remote_count, op: update_item, count: 0 }
//	  - { type: subtotal, value: "330" }
//
// A cart fixture may instead give a literal response body in raw, for
// envelope shapes the normalizer must reject.
//
// # Step Types
//
//   - load, backfill: fetch the cart / run the product backfill
//   - toggle_item, toggle_all: change the checkout selection
//   - add_item, update_quantity, remove_item: cart mutations
//   - proceed: checkout handoff
//   - set_actor: switch the acting user
//   - set_cart: change what the server returns for the next fetch
//
// # Assertion Types
//
//   - remote_count: calls to one remote operation
//   - selected: exact selected line ids, in cart order
//   - subtotal: selected subtotal as a decimal string
//   - badge: badge count
//   - item: quantity, category or total of one line
//   - notifications: kinds of every notification, in order
//   - payload: line ids of the checkout payload, or that none was written
//
// # Deterministic Testing
//
// Every scenario runs against an in-memory fake remote and an in-memory
// SQLite payload store with a fixed clock, so traces are identical across
// runs and can be compared byte for byte with testdata/golden.
package harness
