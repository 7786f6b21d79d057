// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package dlcwire implements the wire encoding of the Discreet Log Contract
negotiation protocol.

Every message is built from two primitives: big-endian fixed width integers
and BigSize, the canonical variable length integer shared with the
Lightning Network.  Nested messages are framed as TLV records (BigSize type,
BigSize length, body) while the three negotiation messages exchanged between
peers, Offer, Accept and Sign, are framed with a two byte message type and
no length.

Decoding is strict: truncated input, non-minimal BigSize values, unknown
types and trailing bytes are all reported as format errors, and no partially
populated message is ever returned.  Decoding never performs semantic
checks.  Those are done by each message's Validate method so that a caller
may inspect a well formed but invalid message before rejecting it.

Messages that belong to a family (contract info, contract descriptors,
oracle info, event descriptors, payout curve pieces, funding inputs,
negotiation fields) are decoded by peeking the next type and dispatching to
the registered variant, which re-reads the type for itself:

	msg, err := dlcwire.Decode(raw)
	if err != nil {
		// malformed bytes
	}
	if err := msg.Validate(); err != nil {
		// well formed, but not an acceptable contract
	}

A diagnostic hook may be injected with WithTrace to observe every TLV record
as it is entered.  Nothing is reported unless a hook is installed.
*/
package dlcwire
