package kvstore

import "github.com/ava-labs/avalanchego/database"

var (
	pollPrefix      = []byte("poll")
	candidatePrefix = []byte("candidate")
	voterPrefix     = []byte("voter")
	outboxPrefix    = []byte("outbox")
	outboxIDPrefix  = []byte("outbox-id")
	pendingPrefix   = []byte("pending")
	metaPrefix      = []byte("meta")

	outboxSeqKey = []byte("outbox-seq")
)

func pollKey(pollID uint64) []byte {
	return database.PackUInt64(pollID)
}

// candidateKey sorts candidates of one poll by index.
func candidateKey(pollID uint64, index uint64) []byte {
	key := make([]byte, 0, 2*database.Uint64Size)
	key = append(key, database.PackUInt64(pollID)...)
	return append(key, database.PackUInt64(index)...)
}

func voterKey(pollID uint64, voterID string) []byte {
	key := make([]byte, 0, database.Uint64Size+len(voterID))
	key = append(key, database.PackUInt64(pollID)...)
	return append(key, voterID...)
}
