// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package dlctx builds the dual funded transaction that locks the collateral of
a discreet log contract.

A Finalizer computes, once, the fee each party pays for its share of the
funding transaction and for its share of the future settlement (CET or
refund) transaction.  A Builder combines a validated offer and accept into

	input 0..n   offer funding inputs, then accept funding inputs
	output 0     2-of-2 P2WSH funding output
	output 1     offer change (P2WPKH)
	output 2     accept change (P2WPKH)

The funding output value is the sum of both collaterals and both future fees,
so the settlement transaction can later be paid for out of the locked funds.
Every amount is checked; a party that cannot pay never produces a clamped
transaction, it produces an Error whose code IsArithmetic.
*/
package dlctx
