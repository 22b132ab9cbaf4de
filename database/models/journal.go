// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package models

// JournalEntry is an audit record of a committed mutating call. Entries are
// CBOR encoded into the blob store, keyed by sequence number
type JournalEntry struct {
	_            struct{} `cbor:",toarray"`
	Seq          uint64
	Time         int64
	Operation    string
	Caller       string
	RecordId     uint64
	Amount       uint64
	Counterparty string
	Detail       string
}
