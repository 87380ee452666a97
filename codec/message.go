// Package codec implements the peer protocol's wire message: a tagged union
// encoded as self-describing JSON (spec §4.5). Encoding and decoding are
// symmetric — decode(encode(m)) always reproduces m — and a malformed or
// truncated payload decodes to None rather than returning an error, since
// every handler in consensus already treats None as a no-op (spec §7,
// DecodeFailure).
package codec

import (
	"encoding/json"

	"github.com/tolelom/tolvote/core"
)

// Kind tags which variant a Message carries.
type Kind string

const (
	KindPing                    Kind = "ping"
	KindPong                    Kind = "pong"
	KindTransactionPayload      Kind = "transaction_payload"
	KindTransactionAccept       Kind = "transaction_accept"
	KindBlockRequest            Kind = "block_request"
	KindBlockPayload            Kind = "block_payload"
	KindBlockAccept             Kind = "block_accept"
	KindBlockDuplicated         Kind = "block_duplicated"
	KindChainRequest            Kind = "chain_request"
	KindChainResponse           Kind = "chain_response"
	KindChainAccept             Kind = "chain_accept"
	KindOpenVote                Kind = "open_vote"
	KindOpenVoteAccept          Kind = "open_vote_accept"
	KindCloseVote               Kind = "close_vote"
	KindCloseVoteAccept         Kind = "close_vote_accept"
	KindRequestTally            Kind = "request_tally"
	KindRequestTallyPayload     Kind = "request_tally_payload"
	KindFindTransaction         Kind = "find_transaction"
	KindFindTransactionResponse Kind = "find_transaction_response"
	KindNone                    Kind = "none"
)

// Message is the tagged union of every wire message. Only the fields
// relevant to Kind are populated; the rest are left at their zero value and
// omitted from the encoded form.
type Message struct {
	Kind Kind `json:"kind"`

	TransactionID      string             `json:"transaction_id,omitempty"`
	TransactionPayload *core.Transaction  `json:"transaction_payload,omitempty"`
	BlockPayload       *core.Block        `json:"block_payload,omitempty"`
	ChainPayload       *core.Wire         `json:"chain_payload,omitempty"`
	TallyPayload       *core.Tally        `json:"tally_payload,omitempty"`
	FoundTransaction   *core.Transaction  `json:"found_transaction,omitempty"`
}

func Ping() Message { return Message{Kind: KindPing} }
func Pong() Message { return Message{Kind: KindPong} }

func TransactionPayload(tx *core.Transaction) Message {
	return Message{Kind: KindTransactionPayload, TransactionPayload: tx}
}

func TransactionAccept(id string) Message {
	return Message{Kind: KindTransactionAccept, TransactionID: id}
}

func BlockRequest(id string) Message { return Message{Kind: KindBlockRequest, TransactionID: id} }

func BlockPayload(b *core.Block) Message { return Message{Kind: KindBlockPayload, BlockPayload: b} }

func BlockAccept() Message     { return Message{Kind: KindBlockAccept} }
func BlockDuplicated() Message { return Message{Kind: KindBlockDuplicated} }

func ChainRequest() Message { return Message{Kind: KindChainRequest} }

func ChainResponse(w core.Wire) Message {
	return Message{Kind: KindChainResponse, ChainPayload: &w}
}

func ChainAccept() Message { return Message{Kind: KindChainAccept} }

func OpenVote() Message       { return Message{Kind: KindOpenVote} }
func OpenVoteAccept() Message { return Message{Kind: KindOpenVoteAccept} }

func CloseVote() Message       { return Message{Kind: KindCloseVote} }
func CloseVoteAccept() Message { return Message{Kind: KindCloseVoteAccept} }

func RequestTally() Message { return Message{Kind: KindRequestTally} }

func RequestTallyPayload(t core.Tally) Message {
	return Message{Kind: KindRequestTallyPayload, TallyPayload: &t}
}

func FindTransaction(id string) Message {
	return Message{Kind: KindFindTransaction, TransactionID: id}
}

// FindTransactionResponse carries the found transaction, or none at all if
// tx is nil — mirroring the protocol's Option<Transaction> payload.
func FindTransactionResponse(tx *core.Transaction) Message {
	return Message{Kind: KindFindTransactionResponse, FoundTransaction: tx}
}

func None() Message { return Message{Kind: KindNone} }

// Encode produces the self-describing text form of m.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses data into a Message. Any malformed or structurally invalid
// payload decodes to None rather than propagating an error (spec §7).
func Decode(data []byte) Message {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return None()
	}
	if m.Kind == "" {
		return None()
	}
	return m
}
