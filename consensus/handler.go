package consensus

import (
	"errors"
	"log"

	"github.com/tolelom/tolvote/codec"
	"github.com/tolelom/tolvote/core"
	"github.com/tolelom/tolvote/events"
)

// Handle implements the peer-to-peer message matrix (spec §4.3 "handle").
// The caller is expected to hold the single coarse protocol lock around
// this call (spec §5); Handle itself never sleeps or performs network I/O.
func (p *CliqueProtocol) Handle(msg codec.Message) codec.Message {
	switch msg.Kind {
	case codec.KindPing:
		return codec.Pong()

	case codec.KindTransactionPayload:
		if msg.TransactionPayload == nil {
			return codec.None()
		}
		if err := p.OnTransactionReceive(msg.TransactionPayload); err != nil {
			log.Printf("[consensus] reject transaction %s: %v", msg.TransactionPayload.ID, err)
		}
		return codec.TransactionAccept(msg.TransactionPayload.ID)

	case codec.KindBlockPayload:
		if msg.BlockPayload == nil {
			return codec.None()
		}
		appended, err := p.ReceiveBlock(msg.BlockPayload)
		if errors.Is(err, core.ErrUnknownParent) || errors.Is(err, core.ErrIdentifierCollision) {
			log.Fatalf("[consensus] FATAL: inbound block %s violates the chain invariant: %v", msg.BlockPayload.Identifier, err)
		}
		if err != nil {
			log.Printf("[consensus] add block %s: %v", msg.BlockPayload.Identifier, err)
			return codec.None()
		}
		if appended {
			return codec.BlockAccept()
		}
		return codec.BlockDuplicated()

	case codec.KindChainRequest:
		return codec.ChainResponse(p.chain.ToWire())

	case codec.KindChainResponse:
		if msg.ChainPayload == nil {
			return codec.None()
		}
		p.ReplaceChain(core.FromWire(*msg.ChainPayload))
		return codec.ChainAccept()

	case codec.KindOpenVote:
		if err := p.OnTransactionReceive(core.NewVoteOpened()); err != nil {
			log.Printf("[consensus] open vote: %v", err)
		}
		return codec.OpenVoteAccept()

	case codec.KindCloseVote:
		if err := p.OnTransactionReceive(core.NewVoteClosed()); err != nil {
			log.Printf("[consensus] close vote: %v", err)
		}
		return codec.CloseVoteAccept()

	case codec.KindFindTransaction:
		blockID, found, err := p.FindTransaction(msg.TransactionID)
		if err != nil || !found {
			return codec.FindTransactionResponse(nil)
		}
		block, ok := p.chain.Block(blockID)
		if !ok {
			return codec.FindTransactionResponse(nil)
		}
		for _, tx := range block.Transactions() {
			if tx.ID == msg.TransactionID {
				return codec.FindTransactionResponse(tx)
			}
		}
		return codec.FindTransactionResponse(nil)

	default:
		// Pong, *Accept, RequestTally (peer-to-peer, RPC-only) and None all
		// provoke no reply.
		return codec.None()
	}
}

// HandleRPC implements the client RPC message matrix (spec §4.3
// "handle_rpc"). It returns the reply owed to the caller and, when the
// message should also propagate to peers, a non-nil broadcast message.
func (p *CliqueProtocol) HandleRPC(msg codec.Message) (reply codec.Message, broadcast *codec.Message) {
	switch msg.Kind {
	case codec.KindTransactionPayload:
		if msg.TransactionPayload == nil {
			return codec.None(), nil
		}
		if err := p.OnTransactionReceive(msg.TransactionPayload); err != nil {
			log.Printf("[consensus] reject transaction %s: %v", msg.TransactionPayload.ID, err)
		}
		out := codec.TransactionPayload(msg.TransactionPayload)
		return codec.TransactionAccept(msg.TransactionPayload.ID), &out

	case codec.KindOpenVote:
		if err := p.OnTransactionReceive(core.NewVoteOpened()); err != nil {
			log.Printf("[consensus] open vote: %v", err)
		}
		out := codec.OpenVote()
		return codec.OpenVoteAccept(), &out

	case codec.KindCloseVote:
		if err := p.OnTransactionReceive(core.NewVoteClosed()); err != nil {
			log.Printf("[consensus] close vote: %v", err)
		}
		out := codec.CloseVote()
		return codec.CloseVoteAccept(), &out

	case codec.KindChainRequest:
		return codec.ChainResponse(p.chain.ToWire()), nil

	case codec.KindRequestTally:
		tally, err := p.CalculateResult()
		if err != nil {
			return codec.None(), nil
		}
		p.emitter.Emit(events.Event{Type: events.EventTallyRequested, Height: p.heaviestHeight()})
		return codec.RequestTallyPayload(tally), nil

	default:
		return codec.None(), nil
	}
}
