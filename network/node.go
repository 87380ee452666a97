package network

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/tolelom/tolvote/codec"
	"github.com/tolelom/tolvote/consensus"
	"github.com/tolelom/tolvote/core"
	"github.com/tolelom/tolvote/pool"
)

// minterTick is how often the minter loop re-evaluates its role and the
// block-period gate (spec §4.3, "one tick ≈ 1 s").
const minterTick = time.Second

// Node owns the two passive listeners, the minter loop, and the single
// coarse mutex that spec §5 requires around every access to the protocol:
// every handler path here — peer listener, RPC listener, minter — takes mu
// for exactly one Handle/HandleRPC/Tick/Sign call and releases it before any
// network I/O or sleep.
type Node struct {
	mu       sync.Mutex
	protocol *consensus.CliqueProtocol

	selfAddr string
	sealers  []string
	tlsCfg   *tls.Config
	workers  *pool.Pool

	peerListenAddr string
	rpcListenAddr  string

	peerListener net.Listener
	rpcListener  net.Listener
	stopCh       chan struct{}
}

// New builds a Node. sealers is the full genesis sealer list (including
// selfAddr, which is skipped on every broadcast).
func New(protocol *consensus.CliqueProtocol, selfAddr, peerListenAddr, rpcListenAddr string, sealers []string, tlsCfg *tls.Config, workers *pool.Pool) *Node {
	return &Node{
		protocol:       protocol,
		selfAddr:       selfAddr,
		sealers:        sealers,
		tlsCfg:         tlsCfg,
		workers:        workers,
		peerListenAddr: peerListenAddr,
		rpcListenAddr:  rpcListenAddr,
		stopCh:         make(chan struct{}),
	}
}

// ListenPeer starts the peer-to-peer listener on the pool.
func (n *Node) ListenPeer() error {
	ln, err := listen(n.peerListenAddr, n.tlsCfg)
	if err != nil {
		return fmt.Errorf("listen peer %s: %w", n.peerListenAddr, err)
	}
	n.peerListener = ln
	n.workers.Go(func() { n.acceptLoop(ln, n.servePeer) })
	return nil
}

// ListenRPC starts the client RPC listener on the pool.
func (n *Node) ListenRPC() error {
	ln, err := listen(n.rpcListenAddr, n.tlsCfg)
	if err != nil {
		return fmt.Errorf("listen rpc %s: %w", n.rpcListenAddr, err)
	}
	n.rpcListener = ln
	n.workers.Go(func() { n.acceptLoop(ln, n.serveRPC) })
	return nil
}

func listen(addr string, tlsCfg *tls.Config) (net.Listener, error) {
	if tlsCfg != nil {
		return tls.Listen("tcp", addr, tlsCfg)
	}
	return net.Listen("tcp", addr)
}

func (n *Node) acceptLoop(ln net.Listener, serve func(net.Conn)) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-n.stopCh:
				return
			default:
				log.Printf("[network] accept error on %s: %v", ln.Addr(), err)
				continue
			}
		}
		n.workers.Go(func() { serve(conn) })
	}
}

// servePeer reads one message, dispatches it through protocol.Handle under
// the protocol lock, writes the reply, and closes (spec §4.4).
func (n *Node) servePeer(conn net.Conn) {
	defer conn.Close()
	msg, err := readMessage(conn)
	if err != nil {
		log.Printf("[network] read peer message: %v", err)
		return
	}

	n.mu.Lock()
	reply := n.protocol.Handle(msg)
	n.mu.Unlock()

	writeMessage(conn, reply)
}

// serveRPC reads one client message, dispatches it through
// protocol.HandleRPC, replies to the caller, then — outside the protocol
// lock — broadcasts to every sealer if the handler asked for it.
func (n *Node) serveRPC(conn net.Conn) {
	msg, err := readMessage(conn)
	if err != nil {
		conn.Close()
		log.Printf("[network] read rpc message: %v", err)
		return
	}

	n.mu.Lock()
	reply, broadcast := n.protocol.HandleRPC(msg)
	n.mu.Unlock()

	writeMessage(conn, reply)
	conn.Close()

	if broadcast != nil {
		n.Broadcast(*broadcast)
	}
}

// Broadcast sends msg to every sealer except self. A single unreachable
// peer is warned and skipped (spec §4.4).
func (n *Node) Broadcast(msg codec.Message) {
	for _, addr := range n.sealers {
		if addr == n.selfAddr {
			continue
		}
		if _, err := exchange(addr, n.tlsCfg, msg); err != nil {
			log.Printf("[network] broadcast to %s: %v", addr, err)
		}
	}
}

// RequestChainCopy emits ChainRequest to every sealer and feeds any
// ChainResponse into the protocol's chain reconciliation.
func (n *Node) RequestChainCopy() {
	for _, addr := range n.sealers {
		if addr == n.selfAddr {
			continue
		}
		reply, err := exchange(addr, n.tlsCfg, codec.ChainRequest())
		if err != nil {
			log.Printf("[network] request chain from %s: %v", addr, err)
			continue
		}
		if reply.Kind != codec.KindChainResponse || reply.ChainPayload == nil {
			continue
		}
		n.mu.Lock()
		n.protocol.Handle(reply)
		n.mu.Unlock()
	}
}

// Sign starts the minting loop on the pool. It runs until done is closed.
func (n *Node) Sign(done <-chan struct{}) {
	n.workers.Go(func() { n.mintLoop(done) })
}

func (n *Node) mintLoop(done <-chan struct{}) {
	ticker := time.NewTicker(minterTick)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			n.mintTick()
		}
	}
}

func (n *Node) mintTick() {
	n.mu.Lock()
	candidate, isCoLeader := n.protocol.Tick(time.Now().Unix())
	n.mu.Unlock()
	if candidate == nil {
		return
	}

	if isCoLeader {
		time.Sleep(consensus.Wiggle())
	}

	n.mu.Lock()
	signed, broadcastIt, err := n.protocol.Sign(candidate)
	n.mu.Unlock()
	if errors.Is(err, core.ErrUnknownParent) || errors.Is(err, core.ErrIdentifierCollision) {
		log.Fatalf("[consensus] FATAL: self-minted block %s violates the chain invariant: %v", candidate.Identifier, err)
	}
	if err != nil {
		log.Printf("[consensus] sign candidate block: %v", err)
		return
	}
	if !broadcastIt {
		return
	}
	n.Broadcast(codec.BlockPayload(signed))
}

// Stop closes both listeners, unblocking their accept loops.
func (n *Node) Stop() {
	close(n.stopCh)
	if n.peerListener != nil {
		n.peerListener.Close()
	}
	if n.rpcListener != nil {
		n.rpcListener.Close()
	}
}

func readMessage(conn net.Conn) (codec.Message, error) {
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	data, err := io.ReadAll(conn)
	if err != nil {
		return codec.Message{}, err
	}
	return codec.Decode(data), nil
}

func writeMessage(conn net.Conn, msg codec.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Printf("[network] encode reply: %v", err)
		return
	}
	if _, err := conn.Write(data); err != nil {
		log.Printf("[network] write reply: %v", err)
	}
}
