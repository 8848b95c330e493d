package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go-city/client"
	"go-city/entities"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: citycli [flags] <command> [args]

commands:
  state            print the board and counters
  hand             list the cards in a fresh hand
  play <card>      play a card by id or name
  watch            follow the live state feed

flags:
`)
	flag.PrintDefaults()
}

func main() {
	server := flag.String("server", "http://localhost:8000", "game server base URL")
	token := flag.String("token", os.Getenv("CITY_TOKEN"), "bearer token for state updates")
	precheck := flag.Bool("precheck", false, "check resources and slots locally before placing")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.New(*server, client.WithToken(*token))
	session := client.NewSession(api, client.SessionOptions{
		PreCheck: *precheck,
		OnNotify: func(msg string) {
			if msg != "" {
				fmt.Fprintln(os.Stderr, "!", msg)
			}
		},
	})
	defer session.Close()

	if err := run(ctx, session, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, session *client.Session, args []string) error {
	switch args[0] {
	case "hand":
		for _, card := range session.Hand() {
			fmt.Printf("%d  %-13s cost %3d  %s\n", card.ID, card.Name, card.Cost, describeEffect(card.Effect))
		}
		return nil
	case "state":
		if err := session.Start(ctx); err != nil {
			return err
		}
		state, _ := session.State()
		fmt.Print(renderBoard(state))
		return nil
	case "play":
		if len(args) < 2 {
			return fmt.Errorf("play needs a card id or name")
		}
		card, ok := lookupCard(session.Hand(), strings.Join(args[1:], " "))
		if !ok {
			return fmt.Errorf("no card %q in hand", strings.Join(args[1:], " "))
		}
		if err := session.Start(ctx); err != nil {
			return err
		}
		if err := session.SelectCard(ctx, card.ID); err != nil {
			return err
		}
		state, _ := session.State()
		fmt.Print(renderBoard(state))
		return nil
	case "watch":
		if err := session.Start(ctx); err != nil {
			return err
		}
		state, _ := session.State()
		fmt.Print(renderBoard(state))
		return watch(ctx, session)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func watch(ctx context.Context, session *client.Session) error {
	err := session.Watch(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func lookupCard(hand []entities.Card, key string) (entities.Card, bool) {
	if id, err := strconv.Atoi(key); err == nil {
		for _, card := range hand {
			if card.ID == id {
				return card, true
			}
		}
		return entities.Card{}, false
	}
	for _, card := range hand {
		if strings.EqualFold(card.Name, key) {
			return card, true
		}
	}
	return entities.Card{}, false
}

func describeEffect(e entities.Effect) string {
	var parts []string
	if e.Resources != 0 {
		parts = append(parts, fmt.Sprintf("%+d resources", e.Resources))
	}
	if e.Residents != 0 {
		parts = append(parts, fmt.Sprintf("%+d residents", e.Residents))
	}
	return strings.Join(parts, ", ")
}

func renderBoard(state entities.GameState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "turn %d  resources %d  residents %d\n", state.Turn, state.Resources, state.Residents)
	for row := 0; row < entities.FieldSize/entities.FieldColumns; row++ {
		for col := 0; col < entities.FieldColumns; col++ {
			slot := state.Field[row*entities.FieldColumns+col]
			if slot == "" {
				slot = "."
			}
			fmt.Fprintf(&b, "[%-12.12s]", slot)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
