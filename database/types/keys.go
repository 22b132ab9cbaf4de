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

package types

import (
	"encoding/binary"
)

const (
	JournalKeyPrefix   = "j"
	JournalSequenceKey = "seq_journal"
)

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

func BytesToUint64(input []byte) uint64 {
	if len(input) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(input)
}

// JournalKey returns the blob key for a journal entry. Keys sort in
// sequence order
func JournalKey(seq uint64) []byte {
	key := []byte(JournalKeyPrefix)
	key = append(key, Uint64ToBytes(seq)...)
	return key
}

// JournalSeqFromKey extracts the sequence number from a journal key
func JournalSeqFromKey(key []byte) (uint64, bool) {
	if len(key) != len(JournalKeyPrefix)+8 ||
		string(key[:len(JournalKeyPrefix)]) != JournalKeyPrefix {
		return 0, false
	}
	return BytesToUint64(key[len(JournalKeyPrefix):]), true
}
