// Package money derives every price the cart shows or hands to checkout.
//
// Arithmetic uses exact decimals (github.com/shopspring/decimal). Nothing in
// this package rounds except Formatter, so summing many discounted lines never
// compounds rounding error. The single rounding step happens at display time,
// to the cash scale of the configured currency (zero fractional digits for
// IDR).
package money
