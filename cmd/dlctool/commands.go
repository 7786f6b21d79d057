// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcdlc/dlcdb"
	"github.com/btcsuite/btcdlc/dlctx"
	"github.com/btcsuite/btcdlc/dlcwire"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
)

// command describes one entry of the command tree.
type command struct {
	name  string
	short string
	long  string
	data  flags.Commander
	sub   []command
}

// stdout receives command output.
var stdout io.Writer = os.Stdout

func commands(cfg *config) []command {
	return []command{{
		name:  "decode",
		short: "Decode a message and print it as JSON",
		long: "Decode a serialized DLC message of any registered type " +
			"from a hex or binary file and print its JSON projection.",
		data: &decodeCmd{cfg: cfg},
	}, {
		name:  "validate",
		short: "Validate an offer and optionally its accept",
		long: "Validate an offer, and when given, check the accept " +
			"against it.",
		data: &validateCmd{cfg: cfg},
	}, {
		name:  "fund",
		short: "Build the funding transaction of an offer and accept",
		long: "Validate an offer and accept and print the unsigned " +
			"funding transaction, its fees and the contract id.",
		data: &fundCmd{cfg: cfg},
	}, {
		name:  "store",
		short: "Manage the contract database",
		long:  "Save, show and delete stored messages and contract states.",
		data:  &storeCmd{},
		sub: []command{{
			name:  "save",
			short: "Save offer, accept or sign messages",
			data:  &storeSaveCmd{cfg: cfg},
		}, {
			name:  "show",
			short: "Show the messages and state stored under an id",
			data:  &storeShowCmd{cfg: cfg},
		}, {
			name:  "state",
			short: "Move a contract to a new negotiation state",
			data:  &storeStateCmd{cfg: cfg},
		}, {
			name:  "delete",
			short: "Delete the messages stored under an id",
			data:  &storeDeleteCmd{cfg: cfg},
		}},
	}}
}

// readMessage reads a message file holding either hex text or raw bytes.
func readMessage(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, b)
	if decoded, err := hex.DecodeString(string(text)); err == nil {
		return decoded, nil
	}
	return b, nil
}

func parseID(s string) ([32]byte, error) {
	var id [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("id %q is %d bytes, want %d", s, len(b),
			len(id))
	}
	copy(id[:], b)
	return id, nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", b)
	return err
}

// loadPair decodes the offer and accept files concurrently.
func loadPair(offerPath, acceptPath string) (*dlcwire.Offer,
	*dlcwire.Accept, error) {

	var (
		offer  *dlcwire.Offer
		accept *dlcwire.Accept
		g      errgroup.Group
	)
	g.Go(func() error {
		b, err := readMessage(offerPath)
		if err != nil {
			return err
		}
		offer, err = dlcwire.DeserializeOffer(b)
		if err != nil {
			return fmt.Errorf("offer %s: %w", offerPath, err)
		}
		return nil
	})
	if acceptPath != "" {
		g.Go(func() error {
			b, err := readMessage(acceptPath)
			if err != nil {
				return err
			}
			accept, err = dlcwire.DeserializeAccept(b)
			if err != nil {
				return fmt.Errorf("accept %s: %w", acceptPath,
					err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return offer, accept, nil
}

// checkPair validates the offer, its network and, when present, the
// accept against it.
func checkPair(cfg *config, offer *dlcwire.Offer, accept *dlcwire.Accept) error {
	if err := offer.Validate(); err != nil {
		return fmt.Errorf("offer: %w", err)
	}
	params, err := offer.ChainParams()
	if err != nil {
		return err
	}
	if params.Net != cfg.params.Net {
		return fmt.Errorf("offer is for %s, not %s", params.Name,
			cfg.params.Name)
	}
	if accept == nil {
		return nil
	}
	if err := accept.Validate(); err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	if err := accept.ValidateAgainst(offer); err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	return nil
}

type decodeCmd struct {
	cfg   *config
	Trace bool `long:"trace" description:"Print the offset and length of every TLV record"`
	Args  struct {
		File string `positional-arg-name:"file" required:"yes"`
	} `positional-args:"yes"`
}

func (c *decodeCmd) Execute(_ []string) error {
	b, err := readMessage(c.Args.File)
	if err != nil {
		return err
	}

	var opts []dlcwire.CursorOption
	if c.Trace {
		opts = append(opts, dlcwire.WithTrace(func(typ dlcwire.MessageType,
			offset, length int) {

			fmt.Fprintf(os.Stderr, "%6d %6d %v\n", offset, length, typ)
		}))
	}
	msg, err := dlcwire.Decode(b, opts...)
	if err != nil {
		return err
	}
	log.Infof("Decoded %v from %s", msg.MsgType(), c.Args.File)
	return printJSON(msg)
}

type validateCmd struct {
	cfg    *config
	Offer  string `long:"offer" required:"yes" description:"Offer message file"`
	Accept string `long:"accept" description:"Accept message file"`
}

func (c *validateCmd) Execute(_ []string) error {
	offer, accept, err := loadPair(c.Offer, c.Accept)
	if err != nil {
		return err
	}
	if err := checkPair(c.cfg, offer, accept); err != nil {
		return err
	}

	id, err := offer.TemporaryContractID()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "valid %x\n", id)
	return err
}

type fundCmd struct {
	cfg    *config
	Offer  string `long:"offer" required:"yes" description:"Offer message file"`
	Accept string `long:"accept" required:"yes" description:"Accept message file"`
	PSBT   bool   `long:"psbt" description:"Also print the transaction as a base64 PSBT"`
}

type fundResult struct {
	TxID       string         `json:"txid"`
	Tx         string         `json:"tx"`
	PSBT       string         `json:"psbt,omitempty"`
	ContractID string         `json:"contractId"`
	FundingFee btcutil.Amount `json:"fundingFee"`
	OfferFees  partyFees      `json:"offerFees"`
	AcceptFees partyFees      `json:"acceptFees"`
}

type partyFees struct {
	Funding btcutil.Amount `json:"funding"`
	Future  btcutil.Amount `json:"future"`
}

func (c *fundCmd) Execute(_ []string) error {
	offer, accept, err := loadPair(c.Offer, c.Accept)
	if err != nil {
		return err
	}
	if err := checkPair(c.cfg, offer, accept); err != nil {
		return err
	}

	builder, err := dlctx.NewBuilder(offer, accept.WithoutSigs())
	if err != nil {
		return err
	}
	f := builder.Finalizer()
	if fee := f.TotalFundingFee(); fee > c.cfg.MaxFee.Amount {
		return fmt.Errorf("funding fee %v exceeds max fee %v", fee,
			c.cfg.MaxFee.Amount)
	}

	tx, err := builder.Build()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return err
	}
	id := dlctx.ContractID(tx.TxHash(), dlctx.FundingOutputIndex,
		accept.TemporaryContractID)

	result := fundResult{
		TxID:       tx.TxHash().String(),
		Tx:         hex.EncodeToString(buf.Bytes()),
		ContractID: hex.EncodeToString(id[:]),
		FundingFee: f.TotalFundingFee(),
		OfferFees: partyFees{
			Funding: f.OfferFees().FundingFee,
			Future:  f.OfferFees().FutureFee,
		},
		AcceptFees: partyFees{
			Funding: f.AcceptFees().FundingFee,
			Future:  f.AcceptFees().FutureFee,
		},
	}
	if c.PSBT {
		packet, err := builder.BuildPacket()
		if err != nil {
			return err
		}
		result.PSBT, err = packet.B64Encode()
		if err != nil {
			return err
		}
	}
	return printJSON(result)
}

// storeCmd only groups the store subcommands.
type storeCmd struct{}

func (storeCmd) Execute(_ []string) error {
	return fmt.Errorf("a store subcommand is required")
}

func openStore(cfg *config) (*dlcdb.Store, error) {
	return dlcdb.Open(cfg.DBPath.Value, dlcdb.DefaultTimeout)
}

type storeSaveCmd struct {
	cfg  *config
	Args struct {
		Files []string `positional-arg-name:"file" required:"yes"`
	} `positional-args:"yes"`
}

func (c *storeSaveCmd) Execute(_ []string) error {
	s, err := openStore(c.cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, path := range c.Args.Files {
		b, err := readMessage(path)
		if err != nil {
			return err
		}
		msg, err := dlcwire.Decode(b)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		switch m := msg.(type) {
		case *dlcwire.Offer:
			id, err := s.SaveOffer(m)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "offer %x\n", id)

		case *dlcwire.Accept:
			if err := s.SaveAccept(m); err != nil {
				return err
			}
			err := advance(s, m.TemporaryContractID,
				dlcdb.StateOffered, dlcdb.StateAccepted)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "accept %x\n", m.TemporaryContractID)

		case *dlcwire.Sign:
			if err := s.SaveSign(m); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "sign %x\n", m.ContractID)

		default:
			return fmt.Errorf("%s: cannot store a %v", path,
				msg.MsgType())
		}
	}
	return nil
}

// advance moves the contract id from state from to state to, leaving
// contracts in any other state alone.
func advance(s *dlcdb.Store, id [32]byte, from, to dlcdb.State) error {
	cur, err := s.FetchState(id)
	if err != nil {
		return err
	}
	if cur.UnwrapOr(0) != from {
		return nil
	}
	return s.PutState(id, to)
}

type storeShowCmd struct {
	cfg  *config
	Args struct {
		ID string `positional-arg-name:"id" required:"yes"`
	} `positional-args:"yes"`
}

type showResult struct {
	State  string          `json:"state,omitempty"`
	Offer  *dlcwire.Offer  `json:"offer,omitempty"`
	Accept *dlcwire.Accept `json:"accept,omitempty"`
	Sign   *dlcwire.Sign   `json:"sign,omitempty"`
}

func (c *storeShowCmd) Execute(_ []string) error {
	id, err := parseID(c.Args.ID)
	if err != nil {
		return err
	}
	s, err := openStore(c.cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var result showResult
	state, err := s.FetchState(id)
	if err != nil {
		return err
	}
	state.WhenSome(func(st dlcdb.State) {
		result.State = st.String()
	})

	offer, err := s.FindOffer(id)
	if err != nil {
		return err
	}
	result.Offer = offer.UnwrapOr(nil)

	accept, err := s.FindAccept(id)
	if err != nil {
		return err
	}
	result.Accept = accept.UnwrapOr(nil)

	sign, err := s.FindSign(id)
	if err != nil {
		return err
	}
	result.Sign = sign.UnwrapOr(nil)

	if result == (showResult{}) {
		return fmt.Errorf("nothing stored under %x", id)
	}
	return printJSON(result)
}

type storeStateCmd struct {
	cfg  *config
	Args struct {
		ID    string `positional-arg-name:"id" required:"yes"`
		State string `positional-arg-name:"state" required:"yes"`
	} `positional-args:"yes"`
}

func (c *storeStateCmd) Execute(_ []string) error {
	id, err := parseID(c.Args.ID)
	if err != nil {
		return err
	}
	state, err := dlcdb.ParseState(c.Args.State)
	if err != nil {
		return err
	}
	s, err := openStore(c.cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.PutState(id, state)
}

type storeDeleteCmd struct {
	cfg  *config
	Args struct {
		ID string `positional-arg-name:"id" required:"yes"`
	} `positional-args:"yes"`
}

func (c *storeDeleteCmd) Execute(_ []string) error {
	id, err := parseID(c.Args.ID)
	if err != nil {
		return err
	}
	s, err := openStore(c.cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteOffer(id); err != nil {
		return err
	}
	if err := s.DeleteAccept(id); err != nil {
		return err
	}
	return s.DeleteSign(id)
}
