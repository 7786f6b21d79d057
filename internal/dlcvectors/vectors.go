// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dlcvectors holds canonical protocol messages shared by the tests
// of several packages.
package dlcvectors

import (
	"encoding/hex"
)

// OfferHex is a regtest offer for an enumerated contract with three
// outcomes, a single oracle and one funding input.
const OfferHex = "" +
	"a71a0006226e46111a0b59caaf126043eb5bbf28c34f3a5e332a1fc7b2b73cf1" +
	"88910ffdd82efd0131000000000bebc200fda7107903c5a7affd51901bc7a518" +
	"29b320d588dc7af0ad1f3d56f20a1d3c60c9ba7c67220000000000000000adf1" +
	"c23fbeed6611efa5caa0e9ed4c440c450a18bc010a6c867e05873ac08ead0000" +
	"0000092363a36922250552ad6bb10ab3ddd6981b530aa9a6fd05725bf85b59e3" +
	"e51163905288000000000bebc200fda712a8fdd824a4fab22628f6e2602e1671" +
	"c286a2f63a9246794008627a1749639217f4214cb4a9494c93d1a852221080f4" +
	"4f697adb4355df59eb339f6ba0f9b01ba661a8b108d4da078bbb1d34e7729e38" +
	"e2ae34236e776da121af442626fa31e31ae55a279a0bfdd8224000013cfba011" +
	"378411b20a5ab773cb95daab93e9bcd1e4cce44986a7dda84e01841b00000000" +
	"fdd8061000020664756d6d79310664756d6d79320564756d6d790327efea09ff" +
	"4dfb13230e887cbab8821d5cc249c7ff28668c6633ff9f4b4c08e3001600142b" +
	"bdec425007dc360523b0294d2c64d2213af4980000000005f5e1000001fda714" +
	"3f000000000000fa51002902000000000100c2eb0b00000000160014369d63a8" +
	"2ed846f4d47ad55045e594ab95539d600000000000000000ffffffff006b0000" +
	"00160014afa16f949f3055f38bd3a73312bed00b615588840000000000000001" +
	"00000064000000c8"

// AcceptHex accepts the offer with one funding input, three CET adaptor
// signatures and empty negotiation fields.
const AcceptHex = "" +
	"a71c960fb5f7960382ac7e76f3e24eb6b00059b1e68632a946843c22e1f65fdf" +
	"216a0000000005f5e100026d8bec9093f96ccc42de166cb9a6c576c95fc24ee1" +
	"6b10e87c3baaa4e49684d90016001436054fa379f7564b5e458371db64366636" +
	"5c8fb30001fda7143f000000000000dae8002902000000000100c2eb0b000000" +
	"001600149ea3bf2d6eb9c2ffa35e36f41e117403ed7fafe90000000000000000" +
	"ffffffff006b000000160014074c82dbe058212905bacc61814456b7415012ed" +
	"fda716fd01e703016292f1b5c67b675aea69c95ec81e8462ab5bb9b7a01f810f" +
	"6d1a7d1d886893b3605fe7fcb75a14b1b1de917917d37e9efac6437d7a080da5" +
	"3fb6dbbcfbfbe7a801efbecb2bce89556e1fb4d31622628830e02a6d04c487f6" +
	"7aca20e9f60fb127f985293541cd14e2bf04e4777d50953531e169dd37c65eb3" +
	"cc17d6b5e4dbe58487f9fae1f68f603fe014a699a346b14a63048c26c9b31236" +
	"d83a7e369a2b29a29200e52fe05d832bcce4538d9c27f3537a0f2086b265b649" +
	"8f30cf667f77ff2fa87606574bc9a915ef57f7546ebb6852a490ad0547bdc52b" +
	"19791d2d0f0cc0acabab01f32459001a28850fa8ee4278111deb0494a8175f02" +
	"e31a1c18b39bd82ec64026a6f341bcd5ba169d67b855030e36bdc65feecc0397" +
	"a07d3bc514da69811ec5485f5553aebda782bc5ac9b47e8e11d701a38ef2c2b7" +
	"d8af3906dd8dfc759754ce006f769592c744141a5ddface6e98f756a9df1bb75" +
	"ad41508ea013bdfee133b396d85be51f870bf2e0ae836bfa984109dab96cc6f4" +
	"ab2a7f118bc6b0b25a4c70d401c768c1d677c6ff0b7ea69fdf29aff100079422" +
	"7db368dff16e838d1f44c4afe9e952ee63d603f7b14de13c1d73b363cc2b1740" +
	"d0b688e73d8e71cddf40f8e7e912df413903779c4e5d6644c504c8609baec8fd" +
	"cb90d6d341cf316748f5d7945f7c8ad6de287b62a1ed1d74ed9116a5158abc7f" +
	"97376d201caa88e0f9daad68fcda4c271cc003512e768f403a57e5242bd1f6aa" +
	"1750d7f3597598094a43b1c7bbfdd82600"

// SignHex signs the contract with one P2WPKH funding witness.
const SignHex = "" +
	"a71ec1c79e1e9e2fa2840b2514902ea244f39eb3001a4037a52ea43c797d4f84" +
	"1269fda716fd01e70300c706fe7ed70197a77397fb7ce8445fcf1d0b239b4ab4" +
	"1ebdad4f76e0a671d7830470f4fef96d0838e8f3cec33176a6a427d777b57d25" +
	"6f8545b570cd702972910192f8ad4eb341ac2867d203360516028b967b46ef0e" +
	"5d1603b59a7d8ebc81d655dd11673febcf098006eba74b3604d0a1da818208ea" +
	"2833079505a3dee7392255f0682e5b357a7382aae6e5bdcc728b94c9d0a52fb6" +
	"f49ac5cbe32804fcfb71b10125e92381be588737f6ac5c28325c843c65519958" +
	"80f830d926abd35ee3f8ed9fdfc47a5fd277d0df2a1f1d0bafba8efad7b127e2" +
	"a232a4846ed90810c81e65750039dba803adb78100f20ca12b09b68a92b996b0" +
	"7a5ee47806379cedfa217848644f48d96ed6443ea7143adf1ce19a4386d0841b" +
	"5071e31f5d3e4c479eab6a856b426c80d091da3de3959b29e4c2e3ae47ddba27" +
	"58c2ca1c6a064dfee4671ba5010098f2595778a1596054ffcafb599f8f4a65c4" +
	"215de757548c142d50b12eb67d4c1407690b808e33eba95fe818223886fd8e9c" +
	"e4c758b4662636af663e0055376300a915ee71914ee8ae2c18d55b397649c005" +
	"7a01f0a85c6ecf1b0eb26f7485f21b24c89013e1cb15a4bf40256e52a66751f3" +
	"3de46032db0801975933be2977a1e37d5d5f2d43f48481cc68783dbfeb21a35c" +
	"62c1ca2eb6ee2ccfc12b74e9fd7a08fbf56fbb4bbcb01d1be3169dfda6f46502" +
	"0ee89c1e368d4a91e36d0d4cc44e6123db348c223988dfe147d611ae9351d6e7" +
	"8cfb902e3d01beed0c909e52a3aae9fda71870000100020047304402203812d7" +
	"d194d44ec68f244cc3fd68507c563ec8c729fdfa3f4a79395b98abe84f022070" +
	"4ab3f3ffd9c50c2488e59f90a90465fccc2d924d67a1e98a133676bf52f37201" +
	"002102dde41aa1f21671a2e28ad92155d2d66e0b5428de15d18db4cbcf216bf0" +
	"0de919"

// Offer returns the raw offer vector.
func Offer() []byte {
	return mustHex(OfferHex)
}

// Accept returns the raw accept vector.
func Accept() []byte {
	return mustHex(AcceptHex)
}

// Sign returns the raw sign vector.
func Sign() []byte {
	return mustHex(SignHex)
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
