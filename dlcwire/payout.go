// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcwire

import (
	"fmt"
	"math/big"
)

// extraPrecisionDenom is the denominator of every extra precision field:
// those fields carry sixteen fractional bits.
const extraPrecisionDenom = 1 << 16

// hyperbolaPrec is the mantissa precision used to evaluate hyperbola
// pieces, which need a square root.
const hyperbolaPrec = 256

// PayoutPoint is a point on a payout curve.  The payout is OutcomePayout
// plus ExtraPrecision/65536 satoshis.
type PayoutPoint struct {
	EventOutcome   uint64
	OutcomePayout  uint64
	ExtraPrecision uint16
}

func (p PayoutPoint) decode(c *Cursor) (PayoutPoint, error) {
	var err error
	if p.EventOutcome, err = c.ReadBigSize(); err != nil {
		return p, err
	}
	if p.OutcomePayout, err = c.ReadBigSize(); err != nil {
		return p, err
	}
	if p.ExtraPrecision, err = c.ReadUint16(); err != nil {
		return p, err
	}
	return p, nil
}

func (p PayoutPoint) encode(w *Writer) {
	w.WriteBigSize(p.EventOutcome)
	w.WriteBigSize(p.OutcomePayout)
	w.WriteUint16(p.ExtraPrecision)
}

// payout returns the exact payout of the point.
func (p PayoutPoint) payout() *big.Rat {
	v := new(big.Int).SetUint64(p.OutcomePayout)
	v.Lsh(v, 16)
	v.Add(v, big.NewInt(int64(p.ExtraPrecision)))
	return new(big.Rat).SetFrac(v, big.NewInt(extraPrecisionDenom))
}

// PayoutCurvePiece is one segment of a payout function between two
// consecutive endpoints.
type PayoutCurvePiece interface {
	Message

	// validateBetween checks the piece against the endpoints that
	// bound it.
	validateBetween(left, right PayoutPoint) error

	// evaluate returns the exact or best effort payout at outcome,
	// which lies between left and right.
	evaluate(left, right PayoutPoint, outcome uint64) (*big.Rat, error)
}

func decodePayoutCurvePiece(c *Cursor) (PayoutCurvePiece, error) {
	return decodeVariant[PayoutCurvePiece](c, "payout curve piece",
		MsgPolynomialPayoutCurvePiece, MsgHyperbolaPayoutCurvePiece)
}

// PayoutFunctionPiece couples a curve piece with the endpoint closing it.
type PayoutFunctionPiece struct {
	Curve    PayoutCurvePiece
	Endpoint PayoutPoint
}

// PayoutFunction maps numeric outcomes to the offer party's payout as a
// chain of curve pieces joined at endpoints.
type PayoutFunction struct {
	Endpoint0 PayoutPoint
	Pieces    []PayoutFunctionPiece
}

// A compile-time check to ensure PayoutFunction implements Message.
var _ Message = (*PayoutFunction)(nil)

// MsgType returns the message type.
func (p *PayoutFunction) MsgType() MessageType {
	return MsgPayoutFunction
}

// Decode reads a payout function record.
func (p *PayoutFunction) Decode(c *Cursor) error {
	var decoded PayoutFunction
	err := decodeTLV(c, MsgPayoutFunction, func(b *Cursor) error {
		n, err := b.ReadUint16()
		if err != nil {
			return err
		}
		if decoded.Endpoint0, err = decoded.Endpoint0.decode(b); err != nil {
			return err
		}
		decoded.Pieces = make([]PayoutFunctionPiece, 0, n)
		for i := 0; i < int(n); i++ {
			var piece PayoutFunctionPiece
			if piece.Curve, err = decodePayoutCurvePiece(b); err != nil {
				return err
			}
			if piece.Endpoint, err = piece.Endpoint.decode(b); err != nil {
				return err
			}
			decoded.Pieces = append(decoded.Pieces, piece)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// Encode writes the payout function record.
func (p *PayoutFunction) Encode(w *Writer) error {
	return encodeTLV(w, MsgPayoutFunction, func(b *Writer) error {
		if err := b.WriteCount16("payout pieces", len(p.Pieces)); err != nil {
			return err
		}
		p.Endpoint0.encode(b)
		for i, piece := range p.Pieces {
			if piece.Curve == nil {
				return invalidf("payout piece %d has no curve", i)
			}
			if err := piece.Curve.Encode(b); err != nil {
				return err
			}
			piece.Endpoint.encode(b)
		}
		return nil
	})
}

// Validate checks that the function has at least one piece, that the
// endpoints are strictly increasing and that every piece fits between its
// endpoints.
func (p *PayoutFunction) Validate() error {
	if len(p.Pieces) == 0 {
		return invalidf("payout function has no pieces")
	}
	left := p.Endpoint0
	for i, piece := range p.Pieces {
		if piece.Curve == nil {
			return invalidf("payout piece %d has no curve", i)
		}
		right := piece.Endpoint
		if right.EventOutcome <= left.EventOutcome {
			return invalidf("payout endpoint %d outcome %d is not "+
				"after %d", i+1, right.EventOutcome,
				left.EventOutcome)
		}
		if err := piece.Curve.Validate(); err != nil {
			return err
		}
		if err := piece.Curve.validateBetween(left, right); err != nil {
			return err
		}
		left = right
	}
	return nil
}

// MinOutcome returns the first outcome covered by the function.
func (p *PayoutFunction) MinOutcome() uint64 {
	return p.Endpoint0.EventOutcome
}

// MaxOutcome returns the last outcome covered by the function.
func (p *PayoutFunction) MaxOutcome() uint64 {
	if len(p.Pieces) == 0 {
		return p.Endpoint0.EventOutcome
	}
	return p.Pieces[len(p.Pieces)-1].Endpoint.EventOutcome
}

// PayoutAt evaluates the function at outcome and rounds the result to the
// nearest satoshi, halves up.
func (p *PayoutFunction) PayoutAt(outcome uint64) (uint64, error) {
	left := p.Endpoint0
	if outcome < left.EventOutcome {
		return 0, invalidf("outcome %d precedes payout function "+
			"start %d", outcome, left.EventOutcome)
	}
	for _, piece := range p.Pieces {
		right := piece.Endpoint
		if outcome <= right.EventOutcome {
			v, err := piece.Curve.evaluate(left, right, outcome)
			if err != nil {
				return 0, err
			}
			return roundRat(v)
		}
		left = right
	}
	return 0, invalidf("outcome %d is beyond payout function end %d",
		outcome, left.EventOutcome)
}

// roundRat rounds a non-negative rational to the nearest integer, halves
// up.
func roundRat(v *big.Rat) (uint64, error) {
	if v.Sign() < 0 {
		return 0, invalidf("payout %s is negative", v.FloatString(4))
	}
	num := new(big.Int).Lsh(v.Num(), 1)
	num.Add(num, v.Denom())
	den := new(big.Int).Lsh(v.Denom(), 1)
	num.Quo(num, den)
	if !num.IsUint64() {
		return 0, invalidf("payout %s overflows", v.FloatString(4))
	}
	return num.Uint64(), nil
}

func ratFromUint64(v uint64) *big.Rat {
	return new(big.Rat).SetInt(new(big.Int).SetUint64(v))
}

// PolynomialPayoutCurvePiece is the polynomial through the piece's bounding
// endpoints and its interior points.
type PolynomialPayoutCurvePiece struct {
	Points []PayoutPoint
}

// A compile-time check to ensure PolynomialPayoutCurvePiece implements
// PayoutCurvePiece.
var _ PayoutCurvePiece = (*PolynomialPayoutCurvePiece)(nil)

// MsgType returns the message type.
func (pp *PolynomialPayoutCurvePiece) MsgType() MessageType {
	return MsgPolynomialPayoutCurvePiece
}

// Decode reads a polynomial piece record.
func (pp *PolynomialPayoutCurvePiece) Decode(c *Cursor) error {
	var decoded PolynomialPayoutCurvePiece
	err := decodeTLV(c, MsgPolynomialPayoutCurvePiece, func(b *Cursor) error {
		n, err := b.ReadUint16()
		if err != nil {
			return err
		}
		if n > 0 {
			decoded.Points = make([]PayoutPoint, 0, n)
		}
		for i := 0; i < int(n); i++ {
			var pt PayoutPoint
			if pt, err = pt.decode(b); err != nil {
				return err
			}
			decoded.Points = append(decoded.Points, pt)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*pp = decoded
	return nil
}

// Encode writes the polynomial piece record.
func (pp *PolynomialPayoutCurvePiece) Encode(w *Writer) error {
	return encodeTLV(w, MsgPolynomialPayoutCurvePiece, func(b *Writer) error {
		if err := b.WriteCount16("polynomial points", len(pp.Points)); err != nil {
			return err
		}
		for _, pt := range pp.Points {
			pt.encode(b)
		}
		return nil
	})
}

// Validate checks that the interior points are strictly increasing.
func (pp *PolynomialPayoutCurvePiece) Validate() error {
	for i := 1; i < len(pp.Points); i++ {
		if pp.Points[i].EventOutcome <= pp.Points[i-1].EventOutcome {
			return invalidf("polynomial point %d outcome %d is not "+
				"after %d", i, pp.Points[i].EventOutcome,
				pp.Points[i-1].EventOutcome)
		}
	}
	return nil
}

func (pp *PolynomialPayoutCurvePiece) validateBetween(left, right PayoutPoint) error {
	for i, pt := range pp.Points {
		if pt.EventOutcome <= left.EventOutcome ||
			pt.EventOutcome >= right.EventOutcome {

			return invalidf("polynomial point %d outcome %d is "+
				"outside (%d, %d)", i, pt.EventOutcome,
				left.EventOutcome, right.EventOutcome)
		}
	}
	return nil
}

// evaluate computes the Lagrange interpolation of the piece's points at
// outcome using exact rational arithmetic.
func (pp *PolynomialPayoutCurvePiece) evaluate(left, right PayoutPoint,
	outcome uint64) (*big.Rat, error) {

	points := make([]PayoutPoint, 0, len(pp.Points)+2)
	points = append(points, left)
	points = append(points, pp.Points...)
	points = append(points, right)

	for _, pt := range points {
		if pt.EventOutcome == outcome {
			return pt.payout(), nil
		}
	}

	x := ratFromUint64(outcome)
	sum := new(big.Rat)
	for i, pi := range points {
		term := pi.payout()
		xi := ratFromUint64(pi.EventOutcome)
		for j, pj := range points {
			if i == j {
				continue
			}
			xj := ratFromUint64(pj.EventOutcome)
			den := new(big.Rat).Sub(xi, xj)
			if den.Sign() == 0 {
				return nil, invalidf("polynomial has repeated "+
					"outcome %d", pi.EventOutcome)
			}
			num := new(big.Rat).Sub(x, xj)
			term.Mul(term, num.Quo(num, den))
		}
		sum.Add(sum, term)
	}
	return sum, nil
}

// PrecisionNumber is a signed fixed point number with sixteen fractional
// bits used by hyperbola parameters.
type PrecisionNumber struct {
	Positive       bool
	Whole          uint64
	ExtraPrecision uint16
}

func (n PrecisionNumber) decode(c *Cursor) (PrecisionNumber, error) {
	var err error
	if n.Positive, err = c.ReadBool(); err != nil {
		return n, err
	}
	if n.Whole, err = c.ReadBigSize(); err != nil {
		return n, err
	}
	if n.ExtraPrecision, err = c.ReadUint16(); err != nil {
		return n, err
	}
	return n, nil
}

func (n PrecisionNumber) encode(w *Writer) {
	w.WriteBool(n.Positive)
	w.WriteBigSize(n.Whole)
	w.WriteUint16(n.ExtraPrecision)
}

// Rat returns the exact value of n.
func (n PrecisionNumber) Rat() *big.Rat {
	v := new(big.Int).SetUint64(n.Whole)
	v.Lsh(v, 16)
	v.Add(v, big.NewInt(int64(n.ExtraPrecision)))
	if !n.Positive {
		v.Neg(v)
	}
	return new(big.Rat).SetFrac(v, big.NewInt(extraPrecisionDenom))
}

func (n PrecisionNumber) float() *big.Float {
	return new(big.Float).SetPrec(hyperbolaPrec).SetRat(n.Rat())
}

// HyperbolaPayoutCurvePiece is a hyperbola branch.  With t the outcome
// shifted by TranslateOutcome and s = ±sqrt(t² - 4AB), the payout is
// C(t+s)/2A + 2AD/(t+s) + TranslatePayout, taking s positive when
// UsePositivePiece is set.
type HyperbolaPayoutCurvePiece struct {
	UsePositivePiece bool
	TranslateOutcome PrecisionNumber
	TranslatePayout  PrecisionNumber
	A                PrecisionNumber
	B                PrecisionNumber
	C                PrecisionNumber
	D                PrecisionNumber
}

// A compile-time check to ensure HyperbolaPayoutCurvePiece implements
// PayoutCurvePiece.
var _ PayoutCurvePiece = (*HyperbolaPayoutCurvePiece)(nil)

// MsgType returns the message type.
func (h *HyperbolaPayoutCurvePiece) MsgType() MessageType {
	return MsgHyperbolaPayoutCurvePiece
}

func (h *HyperbolaPayoutCurvePiece) params() []*PrecisionNumber {
	return []*PrecisionNumber{
		&h.TranslateOutcome, &h.TranslatePayout, &h.A, &h.B, &h.C,
		&h.D,
	}
}

// Decode reads a hyperbola piece record.
func (h *HyperbolaPayoutCurvePiece) Decode(c *Cursor) error {
	var decoded HyperbolaPayoutCurvePiece
	err := decodeTLV(c, MsgHyperbolaPayoutCurvePiece, func(b *Cursor) error {
		var err error
		if decoded.UsePositivePiece, err = b.ReadBool(); err != nil {
			return err
		}
		for _, p := range decoded.params() {
			if *p, err = p.decode(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// Encode writes the hyperbola piece record.
func (h *HyperbolaPayoutCurvePiece) Encode(w *Writer) error {
	return encodeTLV(w, MsgHyperbolaPayoutCurvePiece, func(b *Writer) error {
		b.WriteBool(h.UsePositivePiece)
		for _, p := range h.params() {
			p.encode(b)
		}
		return nil
	})
}

// Validate checks that the hyperbola is not degenerate.
func (h *HyperbolaPayoutCurvePiece) Validate() error {
	if h.A.Rat().Sign() == 0 {
		return invalidf("hyperbola parameter a is zero")
	}
	return nil
}

func (h *HyperbolaPayoutCurvePiece) validateBetween(left, right PayoutPoint) error {
	for _, x := range []uint64{left.EventOutcome, right.EventOutcome} {
		if _, err := h.evaluate(left, right, x); err != nil {
			return err
		}
	}
	return nil
}

func (h *HyperbolaPayoutCurvePiece) evaluate(_, _ PayoutPoint,
	outcome uint64) (*big.Rat, error) {

	newFloat := func() *big.Float {
		return new(big.Float).SetPrec(hyperbolaPrec)
	}

	a := h.A.float()
	if a.Sign() == 0 {
		return nil, invalidf("hyperbola parameter a is zero")
	}

	t := newFloat().SetRat(ratFromUint64(outcome))
	t.Sub(t, h.TranslateOutcome.float())

	disc := newFloat().Mul(t, t)
	fourAB := newFloat().Mul(a, h.B.float())
	fourAB.Mul(fourAB, newFloat().SetInt64(4))
	disc.Sub(disc, fourAB)
	if disc.Sign() < 0 {
		return nil, invalidf("hyperbola undefined at outcome %d",
			outcome)
	}

	s := newFloat().Sqrt(disc)
	if !h.UsePositivePiece {
		s.Neg(s)
	}
	ts := newFloat().Add(t, s)
	if ts.Sign() == 0 {
		return nil, invalidf("hyperbola has a pole at outcome %d",
			outcome)
	}

	twoA := newFloat().Mul(a, newFloat().SetInt64(2))
	first := newFloat().Mul(h.C.float(), ts)
	first.Quo(first, twoA)

	second := newFloat().Mul(twoA, h.D.float())
	second.Quo(second, ts)

	y := newFloat().Add(first, second)
	y.Add(y, h.TranslatePayout.float())
	if y.IsInf() {
		return nil, invalidf("hyperbola diverges at outcome %d",
			outcome)
	}
	r, _ := y.Rat(nil)
	return r, nil
}

// String implements fmt.Stringer for debugging output.
func (p PayoutPoint) String() string {
	return fmt.Sprintf("(%d, %d+%d/65536)", p.EventOutcome,
		p.OutcomePayout, p.ExtraPrecision)
}
