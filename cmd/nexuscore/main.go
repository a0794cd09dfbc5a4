// NexusCore is an idle-RPG combat and mission simulator with a remote
// profile store.
// Usage: nexuscore [--version] [--plain] [--script <file>] [--seed <n>] [--offline]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/etherealgames/nexuscore/cli"
	"github.com/etherealgames/nexuscore/engine"
	"github.com/etherealgames/nexuscore/engine/codec"
	"github.com/etherealgames/nexuscore/engine/state"
	"github.com/etherealgames/nexuscore/profile"
	"github.com/etherealgames/nexuscore/tui"
	"github.com/etherealgames/nexuscore/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// sessionStore adapts a profile.Store to the session's save contract by
// fixing the wallet.
type sessionStore struct {
	store  profile.Store
	wallet string
}

func (s sessionStore) Save(ctx context.Context, pairs []codec.KV) error {
	return s.store.Save(ctx, s.wallet, pairs)
}

func main() {
	plain := false
	offline := false
	var scriptFile string
	var seedFlag int64

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("nexuscore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--offline":
			offline = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a number\n")
				os.Exit(1)
			}
			i++
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			seedFlag = n
		default:
			fmt.Fprintf(os.Stderr, "Usage: nexuscore [--version] [--plain] [--script <file>] [--seed <n>] [--offline]\n")
			os.Exit(1)
		}
	}

	cfg, err := profile.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seedFlag != 0 {
		seed = seedFlag
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	signer, err := profile.LoadOrCreateSigner(cfg.KeyPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading identity: %v\n", err)
		os.Exit(1)
	}
	wallet := signer.Address()

	ctx := context.Background()
	store, snap, err := openStore(ctx, cfg, signer, offline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error contacting profile store: %v\n", err)
		os.Exit(1)
	}

	var gs *types.GameState
	if snap != nil && len(snap.Data) > 0 {
		gs = codec.Decode(snap.Data)
	} else {
		gs = state.NewGameState()
	}
	if gs.Profile == nil {
		name := "Adventurer"
		if snap != nil && snap.Name != "" {
			name = snap.Name
		}
		gs.Profile = &types.ProfileInfo{Name: name, Wallet: wallet}
	}

	session := engine.NewSession(gs, seed, sessionStore{store: store, wallet: wallet}, wallet)

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		fmt.Printf("nexuscore %s\n\n", version)
		c := cli.New(session)
		c.In = f
		c.EchoInput = true
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("nexuscore %s\n\n", version)
		cli.New(session).Run()
		return
	}

	if err := tui.Run(session); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore selects the remote client when a service URL is configured,
// falling back to the local file store. The remote path bootstraps the
// profile so a fresh wallet gets a named profile on first run.
func openStore(ctx context.Context, cfg profile.Config, signer *profile.Signer, offline bool) (profile.Store, *profile.Snapshot, error) {
	if offline || cfg.ServiceURL == "" {
		fs := profile.NewFileStore(cfg.SavePath())
		snap, err := fs.Load(ctx, signer.Address())
		if err != nil {
			return nil, nil, err
		}
		return fs, snap, nil
	}

	client := profile.NewClient(cfg.ServiceURL, cfg.Timeout, signer)
	snap, err := client.Bootstrap(ctx)
	if err != nil {
		return nil, nil, err
	}
	return client, snap, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
