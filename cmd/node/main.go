// Command node starts a tolvote sealer node, or scaffolds the files one
// needs (a config file, a self-signed mTLS certificate pair) before it can.
//
// When bringing up a new network, let the first node mint a block before
// starting the second.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/tolelom/tolvote/config"
	"github.com/tolelom/tolvote/consensus"
	"github.com/tolelom/tolvote/core"
	"github.com/tolelom/tolvote/crypto/certgen"
	"github.com/tolelom/tolvote/events"
	"github.com/tolelom/tolvote/genesis"
	"github.com/tolelom/tolvote/network"
	"github.com/tolelom/tolvote/pool"
	"github.com/tolelom/tolvote/storage"
)

func main() {
	app := &cli.App{
		Name:  "node",
		Usage: "run or scaffold a tolvote sealer node",
		Commands: []*cli.Command{
			runCommand(),
			initCommand(),
			genCertsCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run a sealer node",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.json", Usage: "path to node config file"},
			&cli.BoolFlag{Name: "mint", Usage: "start the minting loop regardless of the config file's mint setting"},
			&cli.BoolFlag{Name: "pull", Value: true, Usage: "pull a chain copy from peers before joining (use -pull=false to skip)"},
			&cli.StringSliceFlag{Name: "seed", Usage: "additional peer address to dial beyond the genesis sealer list (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			return runNode(c.String("config"), c.Bool("mint"), c.Bool("pull"), c.StringSlice("seed"))
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "write a starter config file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.json", Usage: "path to write"},
			&cli.StringFlag{Name: "listen-addr", Required: true, Usage: "this node's own entry in the genesis sealer list"},
			&cli.StringFlag{Name: "rpc-listen-addr", Required: true},
			&cli.StringFlag{Name: "genesis", Value: "genesis.json"},
			&cli.StringFlag{Name: "public-key", Value: "public_key.json"},
			&cli.StringFlag{Name: "public-uciv", Value: "public_uciv.json"},
			&cli.StringFlag{Name: "data-dir", Value: "data"},
			&cli.BoolFlag{Name: "mint"},
		},
		Action: func(c *cli.Context) error {
			cfg := &config.Config{
				ListenAddr:     c.String("listen-addr"),
				RPCListenAddr:  c.String("rpc-listen-addr"),
				GenesisPath:    c.String("genesis"),
				PublicKeyPath:  c.String("public-key"),
				PublicUCIVPath: c.String("public-uciv"),
				DataDir:        c.String("data-dir"),
				Mint:           c.Bool("mint"),
				WorkerPoolSize: 8,
			}
			if err := config.Save(cfg, c.String("config")); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", c.String("config"))
			return nil
		},
	}
}

func genCertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "gen-certs",
		Usage: "generate a self-signed CA and node mTLS certificate pair",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "certs", Usage: "output directory"},
			&cli.StringFlag{Name: "node-id", Required: true, Usage: "node identifier used as the certificate common name"},
		},
		Action: func(c *cli.Context) error {
			if err := certgen.GenerateAll(c.String("dir"), c.String("node-id"), nil); err != nil {
				return fmt.Errorf("gen-certs: %w", err)
			}
			fmt.Printf("Certificates generated in %s for node %q\n", c.String("dir"), c.String("node-id"))
			return nil
		},
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func runNode(cfgPath string, mintOverride, pull bool, seeds []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	gen, err := genesis.Load(cfg.GenesisPath, cfg.PublicKeyPath, cfg.PublicUCIVPath)
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	signerIndex := gen.IndexOf(cfg.ListenAddr)
	if signerIndex < 0 {
		return fmt.Errorf("this node's listen_addr %q is not in the genesis sealer list", cfg.ListenAddr)
	}

	tlsCfg, err := config.LoadTLSConfig(cfg.TLS)
	if err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	if tlsCfg != nil {
		log.Println("mTLS enabled between sealers")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("mkdir data dir: %w", err)
	}
	db, err := storage.NewLevelDB(cfg.DataDir + "/addrbook")
	if err != nil {
		return fmt.Errorf("open address book: %w", err)
	}
	defer db.Close()
	addrBook := network.NewAddrBook(db)
	peers := append([]string{}, gen.Sealer...)
	for _, addr := range append(addrBook.Known(), seeds...) {
		if addr != cfg.ListenAddr && !contains(peers, addr) {
			peers = append(peers, addr)
		}
	}
	for _, addr := range peers {
		if addr != cfg.ListenAddr {
			_ = addrBook.Remember(addr)
		}
	}

	chain := core.NewChain(gen)
	emitter := events.NewEmitter()
	emitter.Subscribe(events.EventBlockCommitted, func(ev events.Event) {
		log.Printf("block committed: %s (height %d)", ev.BlockID, ev.Height)
	})
	emitter.Subscribe(events.EventChainReplaced, func(events.Event) {
		log.Println("chain replaced by a heavier remote chain")
	})

	protocol := consensus.New(gen, chain, signerIndex, emitter)

	workers := pool.New(cfg.WorkerPoolSize)
	node := network.New(protocol, cfg.ListenAddr, cfg.ListenAddr, cfg.RPCListenAddr, peers, tlsCfg, workers)

	if err := node.ListenPeer(); err != nil {
		return fmt.Errorf("peer listener: %w", err)
	}
	log.Printf("peer listener on %s (signer_index=%d of %d)", cfg.ListenAddr, signerIndex, gen.SignerCount())

	if err := node.ListenRPC(); err != nil {
		return fmt.Errorf("rpc listener: %w", err)
	}
	log.Printf("rpc listener on %s", cfg.RPCListenAddr)

	if pull {
		node.RequestChainCopy()
	}

	var mintDone chan struct{}
	if cfg.Mint || mintOverride {
		mintDone = make(chan struct{})
		node.Sign(mintDone)
		log.Println("minting loop started")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down...")

	if mintDone != nil {
		close(mintDone)
	}
	node.Stop()
	workers.Stop()
	return nil
}
