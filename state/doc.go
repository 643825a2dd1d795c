// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the persisted ledger storage.
// It follows the flow as bellow:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ playback(staging) ] -> [ kv bulk write ]
//	          |
//	    [ lru cache ]
//	          |
//	   [ kv store ]
//
// A State instance is short lived. It's created for one operation, and either
// staged and committed as a whole, or simply dropped.
package state
