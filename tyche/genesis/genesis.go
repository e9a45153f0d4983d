// Package genesis builds the first block of a TycheCash network.
//
// The coinbase of the genesis block is hard-coded: generating it calls the
// random key generator, but every node must agree on the same block.
// GenerateTransaction produces a fresh one of the same shape, which is how
// the constant was made.
package genesis

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tychecash/go-tyche/address"
	"github.com/tychecash/go-tyche/inter"
	"github.com/tychecash/go-tyche/miner"
	"github.com/tychecash/go-tyche/tyche"
)

// CoinbaseTxHex is the encoded genesis coinbase: version 1, unlocked after
// ten blocks, one base input at height 0 and one output of 2^44-1 units.
const CoinbaseTxHex = "010a01ff0001ffffffffffff0302" +
	"9b2e4c0281c0b02e7c53291a94d1d0cbff8883f8024f5142ee494ffbbd088071" +
	"2101" +
	"7767aafcde9be00dcfd098715ebcf7f410daebc582fda69d24a28e9d0bc890d1"

const (
	MainNetNonce uint32 = 70
	TestNetNonce uint32 = 71
	Timestamp    uint64 = 0
)

// Build returns the genesis block of the network described by rules.
func Build(rules tyche.Rules) (*inter.Block, error) {
	tx, err := inter.UnmarshalTransaction(common.FromHex(CoinbaseTxHex))
	if err != nil {
		return nil, fmt.Errorf("failed to parse coinbase tx from hard coded blob: %w", err)
	}
	nonce := MainNetNonce
	if rules.Testnet {
		nonce = TestNetNonce
	}
	return &inter.Block{
		BlockHeader: inter.BlockHeader{
			MajorVersion: tyche.BlockMajorVersion1,
			MinorVersion: tyche.BlockMinorVersion0,
			Timestamp:    Timestamp,
			Nonce:        nonce,
		},
		BaseTransaction: *tx,
	}, nil
}

// GenerateTransaction builds a new genesis coinbase paying the zero address
// with no fee. Its hex form can replace CoinbaseTxHex when a network is
// relaunched.
func GenerateTransaction(b *miner.Builder) (*inter.Transaction, error) {
	return b.ConstructMinerTx(miner.Request{
		Address:    address.AccountAddress{},
		MaxOutputs: 1,
	})
}
