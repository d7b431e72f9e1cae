// Command ludo is a terminal peer: it dials a relay, joins a room, takes
// part in host election, and plays a seat from stdin commands.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/gajjugrg/ludo-game/internal/config"
	"github.com/gajjugrg/ludo-game/internal/game"
	"github.com/gajjugrg/ludo-game/internal/relay"
	"github.com/gajjugrg/ludo-game/internal/session"
)

func main() {
	var (
		relayFlag = flag.String("relay", "", "Relay websocket URL (overrides RELAY_URL env var)")
		roomFlag  = flag.String("room", "", "Room to join (overrides ROOM env var)")
		nameFlag  = flag.String("name", "", "Display name for this peer")
		players   = flag.Int("players", 0, "Seats when hosting a fresh game: 2-4")
		vsAI      = flag.Bool("ai", false, "Give the second seat to the computer")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg := config.FromEnv()
	relayURL := *relayFlag
	if relayURL == "" {
		relayURL = cfg.RelayURL
	}
	room := *roomFlag
	if room == "" {
		room = cfg.DefaultRoom
	}
	seats := *players
	if seats == 0 {
		seats = cfg.DefaultPlayers
	}
	name := *nameFlag
	if name == "" {
		name = "Player"
	}

	var client *relay.Client
	if relayURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		c, err := relay.Dial(ctx, relayURL)
		cancel()
		if err != nil {
			zerologlog.Fatal().Err(err).Str("url", relayURL).Msg("relay dial failed")
		}
		client = c
		defer client.Close()
	}

	peerCfg := session.Config{
		Name:         name,
		Players:      seats,
		AISecond:     *vsAI,
		ClaimTimeout: cfg.ClaimTimeout,
		Logger:       zerologlog.Logger,
	}
	if client != nil {
		peerCfg.Sender = client
	}
	peer := session.New(peerCfg)
	defer peer.Stop()

	if client != nil {
		if err := client.Join(room); err != nil {
			zerologlog.Fatal().Err(err).Msg("room join failed")
		}
		go func() {
			for msg := range client.In {
				peer.Handle(msg)
			}
			zerologlog.Warn().Msg("relay connection closed")
		}()
	}

	const usage = "commands: roll | pick <token> | new <players> | undo | turn <seat> | finish <seat> <token> | state | quit"
	fmt.Println(usage)
	printState(peer.StateCopy())

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "roll":
			if _, err := peer.Roll(); err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			printState(peer.StateCopy())
		case "pick":
			if len(fields) < 2 {
				fmt.Println("usage: pick <token 0-3>")
				continue
			}
			ti, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: pick <token 0-3>")
				continue
			}
			if err := peer.SelectToken(ti); err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			printState(peer.StateCopy())
		case "new":
			n := seats
			if len(fields) > 1 {
				if v, err := strconv.Atoi(fields[1]); err == nil {
					n = v
				}
			}
			if err := peer.NewGame(n, *vsAI); err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			printState(peer.StateCopy())
		case "undo":
			if err := peer.Mutate(func(m *game.Match) { m.Undo() }); err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			printState(peer.StateCopy())
		case "turn":
			if len(fields) < 2 {
				fmt.Println("usage: turn <seat>")
				continue
			}
			seat, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: turn <seat>")
				continue
			}
			if err := peer.Mutate(func(m *game.Match) { m.ForceTurn(seat) }); err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			printState(peer.StateCopy())
		case "finish":
			if len(fields) < 3 {
				fmt.Println("usage: finish <seat> <token>")
				continue
			}
			seat, err1 := strconv.Atoi(fields[1])
			ti, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				fmt.Println("usage: finish <seat> <token>")
				continue
			}
			if err := peer.Mutate(func(m *game.Match) { m.JumpToFinish(seat, ti) }); err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			printState(peer.StateCopy())
		case "state":
			printState(peer.StateCopy())
		case "quit", "exit":
			return
		default:
			fmt.Println(usage)
		}
	}
}

func printState(st game.State) {
	if !st.Running {
		if st.Winner >= 0 {
			fmt.Printf("game over, %s wins\n", st.Players[st.Winner].Name)
			return
		}
		fmt.Println("no game running")
		return
	}
	for i, pl := range st.Players {
		marker := " "
		if i == st.Current {
			marker = ">"
		}
		cells := make([]string, len(pl.Tokens))
		for ti, tok := range pl.Tokens {
			cells[ti] = tokenCell(tok)
		}
		fmt.Printf("%s %-8s %s done=%d\n", marker, pl.Name, strings.Join(cells, " "), pl.FinishedCount)
	}
	if w := st.Waiting; w != nil {
		fmt.Printf("die=%d, choose a token: %v\n", w.Die, w.Tokens)
	} else if st.Dice > 0 {
		fmt.Printf("die=%d\n", st.Dice)
	}
}

func tokenCell(t game.Token) string {
	switch {
	case t.Finished:
		return "fin"
	case t.InYard():
		return "yard"
	default:
		return strconv.Itoa(t.Steps)
	}
}
