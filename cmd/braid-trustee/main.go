// Command braid-trustee runs one Trustee's SessionSet against a configured
// bulletin board transport until terminated, per spec §6 ("Trustee identity
// inputs") and §4.7 (SessionSet lifecycle).
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/braidcore/braid/board"
	"github.com/braidcore/braid/crypto/signatures/ethereum"
	"github.com/braidcore/braid/db"
	"github.com/braidcore/braid/db/pebbledb"
	"github.com/braidcore/braid/log"
	"github.com/braidcore/braid/session"
	"github.com/braidcore/braid/store"
	"github.com/braidcore/braid/trustee"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Infow("starting braid-trustee", "name", cfg.Name)

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	signer, err := ethereum.NewSignerFromHex(cfg.SignerKey)
	if err != nil {
		log.Fatalf("load signing key: %v", err)
	}
	sealingKey, err := hex.DecodeString(cfg.SealingKey)
	if err != nil {
		log.Fatalf("decode sealing key: %v", err)
	}

	transport := board.NewClient(cfg.BoardURL)

	sess := session.New(transport, func(name string) (*trustee.Trustee, error) {
		backend, err := pebbledb.New(db.Options{Path: filepath.Join(cfg.Datadir, "boards", name)})
		if err != nil {
			return nil, fmt.Errorf("open local cache for board %s: %w", name, err)
		}
		st, err := store.New(backend)
		if err != nil {
			return nil, fmt.Errorf("open message store for board %s: %w", name, err)
		}
		return trustee.New(trustee.Config{
			Name:       cfg.Name,
			Signer:     signer,
			SealingKey: sealingKey,
			Position:   cfg.Position,
			MaxMessage: cfg.MaxMessage,
		}, st), nil
	})

	session.TickInterval = cfg.PollInterval

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sess.Start(ctx); err != nil {
		log.Fatalf("start session set: %v", err)
	}
	sess.Refresh(cfg.Boards)
	log.Infow("session set running", "boards", cfg.Boards, "pollInterval", cfg.PollInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Infow("received signal, shutting down", "signal", sig.String())

	sess.Shutdown()
	sess.Wait()
}
