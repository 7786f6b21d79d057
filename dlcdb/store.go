// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcdlc/dlcwire"
	"github.com/btcsuite/btcwallet/walletdb"
	// Register the bbolt backed walletdb driver.
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Naming
//
// The following variables are commonly used in this file and given
// reserved names:
//
//   ns: The top-level bucket of the store
//   b:  The nested bucket being operated on
//   k:  A single bucket key
//   v:  A single bucket value

const (
	// DriverName is the walletdb driver the store is opened with.
	DriverName = "bdb"

	// LatestVersion is the most recent store layout version.
	LatestVersion = 1

	// DefaultTimeout is how long opening the database waits for the
	// file lock.
	DefaultTimeout = 10 * time.Second
)

var (
	namespaceKey = []byte("dlc")
	versionKey   = []byte("version")

	bucketOffers  = []byte("offers")
	bucketAccepts = []byte("accepts")
	bucketSigns   = []byte("signs")
	bucketStates  = []byte("states")
)

// Store persists negotiation messages and the state of each contract.
// Offers and accepts are keyed by the temporary contract id, signs by the
// final contract id.
type Store struct {
	db walletdb.DB
}

// Open opens the store at dbPath, creating the database file and its
// buckets if they do not exist yet.
func Open(dbPath string, timeout time.Duration) (*Store, error) {
	var (
		db  walletdb.DB
		err error
	)
	if _, statErr := os.Stat(dbPath); os.IsNotExist(statErr) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, storeError(ErrDatabase, "create db dir", err)
		}
		db, err = walletdb.Create(DriverName, dbPath, true, timeout)
	} else {
		db, err = walletdb.Open(DriverName, dbPath, true, timeout)
	}
	if err != nil {
		return nil, storeError(ErrDatabase, "open "+dbPath, err)
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New returns a store over an open database, creating its buckets if
// needed.
func New(db walletdb.DB) (*Store, error) {
	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns, err := tx.CreateTopLevelBucket(namespaceKey)
		if err != nil {
			return err
		}
		for _, k := range [][]byte{bucketOffers, bucketAccepts,
			bucketSigns, bucketStates} {

			if _, err := ns.CreateBucketIfNotExists(k); err != nil {
				return err
			}
		}

		v := ns.Get(versionKey)
		switch {
		case v == nil:
			return ns.Put(versionKey, []byte{LatestVersion})
		case len(v) != 1:
			return storeError(ErrData, fmt.Sprintf("version value "+
				"has %d bytes", len(v)), nil)
		case v[0] != LatestVersion:
			return storeError(ErrData, fmt.Sprintf("unsupported "+
				"store version %d", v[0]), nil)
		}
		return nil
	})
	if err != nil {
		return nil, wrapDBError("initialize store", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveOffer stores offer under its temporary contract id, which it
// returns.  A contract seen for the first time is recorded as Offered.
func (s *Store) SaveOffer(offer *dlcwire.Offer) ([32]byte, error) {
	b, err := dlcwire.Serialize(offer)
	if err != nil {
		return [32]byte{}, storeError(ErrInvalidMessage,
			"serialize offer", err)
	}
	id, err := offer.TemporaryContractID()
	if err != nil {
		return [32]byte{}, storeError(ErrInvalidMessage,
			"temporary contract id", err)
	}

	err = walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		if err := putRaw(ns, bucketOffers, id, b); err != nil {
			return err
		}
		states := ns.NestedReadWriteBucket(bucketStates)
		if states.Get(id[:]) == nil {
			return states.Put(id[:], []byte{byte(StateOffered)})
		}
		return nil
	})
	if err != nil {
		return [32]byte{}, wrapDBError("save offer", err)
	}

	log.Debugf("Saved offer %x", id)
	return id, nil
}

// FindOffer returns the offer stored under tempID, if any.
func (s *Store) FindOffer(tempID [32]byte) (fn.Option[*dlcwire.Offer], error) {
	return find(s, bucketOffers, tempID, dlcwire.DeserializeOffer)
}

// DeleteOffer removes the offer stored under tempID.
func (s *Store) DeleteOffer(tempID [32]byte) error {
	return s.delete(bucketOffers, tempID)
}

// SaveAccept stores accept under its temporary contract id.
func (s *Store) SaveAccept(accept *dlcwire.Accept) error {
	b, err := dlcwire.Serialize(accept)
	if err != nil {
		return storeError(ErrInvalidMessage, "serialize accept", err)
	}
	return s.save(bucketAccepts, accept.TemporaryContractID, b)
}

// FindAccept returns the accept stored under tempID, if any.
func (s *Store) FindAccept(tempID [32]byte) (fn.Option[*dlcwire.Accept], error) {
	return find(s, bucketAccepts, tempID, dlcwire.DeserializeAccept)
}

// DeleteAccept removes the accept stored under tempID.
func (s *Store) DeleteAccept(tempID [32]byte) error {
	return s.delete(bucketAccepts, tempID)
}

// SaveSign stores sign under its contract id.
func (s *Store) SaveSign(sign *dlcwire.Sign) error {
	b, err := dlcwire.Serialize(sign)
	if err != nil {
		return storeError(ErrInvalidMessage, "serialize sign", err)
	}
	return s.save(bucketSigns, sign.ContractID, b)
}

// FindSign returns the sign stored under contractID, if any.
func (s *Store) FindSign(contractID [32]byte) (fn.Option[*dlcwire.Sign], error) {
	return find(s, bucketSigns, contractID, dlcwire.DeserializeSign)
}

// DeleteSign removes the sign stored under contractID.
func (s *Store) DeleteSign(contractID [32]byte) error {
	return s.delete(bucketSigns, contractID)
}

// PutState moves the contract id to state next.  A contract without a
// recorded state may only enter StateOffered.
func (s *Store) PutState(id [32]byte, next State) error {
	if !next.IsValid() {
		return storeError(ErrUnknownState, fmt.Sprintf("state %v", next),
			nil)
	}

	var prev State
	err := walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		b := tx.ReadWriteBucket(namespaceKey).
			NestedReadWriteBucket(bucketStates)

		cur, ok, err := readState(b, id)
		if err != nil {
			return err
		}
		prev = cur
		switch {
		case !ok && next != StateOffered:
			return storeError(ErrInvalidTransition, fmt.Sprintf(
				"contract %x has no state and cannot enter %v",
				id, next), nil)

		case ok && !cur.CanTransition(next):
			return storeError(ErrInvalidTransition, fmt.Sprintf(
				"contract %x cannot move from %v to %v", id, cur,
				next), nil)
		}
		return b.Put(id[:], []byte{byte(next)})
	})
	if err != nil {
		return wrapDBError("put state", err)
	}

	log.Infof("Contract %x: %v -> %v", id, prev, next)
	return nil
}

// FetchState returns the recorded state of the contract id, if any.
func (s *Store) FetchState(id [32]byte) (fn.Option[State], error) {
	var (
		state State
		ok    bool
	)
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		b := tx.ReadBucket(namespaceKey).NestedReadBucket(bucketStates)

		var err error
		state, ok, err = readState(b, id)
		return err
	})
	if err != nil {
		return fn.None[State](), wrapDBError("fetch state", err)
	}
	if !ok {
		return fn.None[State](), nil
	}
	return fn.Some(state), nil
}

// ForEachState calls f with every contract id and its state.
func (s *Store) ForEachState(f func(id [32]byte, state State) error) error {
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		b := tx.ReadBucket(namespaceKey).NestedReadBucket(bucketStates)
		return b.ForEach(func(k, v []byte) error {
			var id [32]byte
			if len(k) != len(id) || len(v) != 1 {
				return storeError(ErrData, fmt.Sprintf("state "+
					"record %x=%x", k, v), nil)
			}
			copy(id[:], k)
			return f(id, State(v[0]))
		})
	})
	return wrapDBError("iterate states", err)
}

type stateBucket interface {
	Get(key []byte) []byte
}

func readState(b stateBucket, id [32]byte) (State, bool, error) {
	v := b.Get(id[:])
	if v == nil {
		return 0, false, nil
	}
	if len(v) != 1 || !State(v[0]).IsValid() {
		return 0, false, storeError(ErrData, fmt.Sprintf("contract %x "+
			"state value %x", id, v), nil)
	}
	return State(v[0]), true, nil
}

func (s *Store) save(bucket []byte, id [32]byte, v []byte) error {
	err := walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		return putRaw(tx.ReadWriteBucket(namespaceKey), bucket, id, v)
	})
	if err != nil {
		return wrapDBError(fmt.Sprintf("save %s", bucket), err)
	}
	log.Debugf("Saved %s record %x", bucket, id)
	return nil
}

func putRaw(ns walletdb.ReadWriteBucket, bucket []byte, id [32]byte,
	v []byte) error {

	return ns.NestedReadWriteBucket(bucket).Put(id[:], v)
}

func (s *Store) delete(bucket []byte, id [32]byte) error {
	err := walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		return tx.ReadWriteBucket(namespaceKey).
			NestedReadWriteBucket(bucket).Delete(id[:])
	})
	return wrapDBError(fmt.Sprintf("delete %s", bucket), err)
}

// find reads and decodes the record stored under id.
func find[T any](s *Store, bucket []byte, id [32]byte,
	decode func([]byte, ...dlcwire.CursorOption) (T, error)) (fn.Option[T], error) {

	var v []byte
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		stored := tx.ReadBucket(namespaceKey).
			NestedReadBucket(bucket).Get(id[:])

		// Values are only valid for the life of the transaction.
		if stored != nil {
			v = append([]byte(nil), stored...)
		}
		return nil
	})
	if err != nil {
		return fn.None[T](), wrapDBError(fmt.Sprintf("find %s", bucket),
			err)
	}
	if v == nil {
		return fn.None[T](), nil
	}

	msg, err := decode(v)
	if err != nil {
		return fn.None[T](), storeError(ErrData, fmt.Sprintf("decode "+
			"%s record %x", bucket, id), err)
	}
	return fn.Some(msg), nil
}

// wrapDBError returns err unchanged when it is already an Error and wraps
// it as ErrDatabase otherwise.
func wrapDBError(desc string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(Error); ok {
		return err
	}
	return storeError(ErrDatabase, desc, err)
}
