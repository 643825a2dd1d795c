// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// create a table for staking events
const eventTableSchema = `
create table if not exists event (
	seq integer primary key autoincrement,
	kind text not null,
	account blob(20) not null,
	amount blob,
	fee blob,
	time integer not null
);

CREATE INDEX if not exists accountIndex on event(account);
CREATE INDEX if not exists kindIndex on event(kind);
CREATE INDEX if not exists timeIndex on event(time);
`
