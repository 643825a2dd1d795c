// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/stakepool/thor"
)

var devAccounts = sync.OnceValue(func() []thor.Address {
	var accs []thor.Address
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		accs = append(accs, thor.Address(crypto.PubkeyToAddress(pk.PublicKey)))
	}
	return accs
})

// DevAccounts returns pre-alloced accounts for solo mode, the first one is the admin.
func DevAccounts() []thor.Address {
	return devAccounts()
}
