package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/vctt94/threecardpoker/pkg/client"
	"github.com/vctt94/threecardpoker/pkg/logging"
	"github.com/vctt94/threecardpoker/pkg/poker"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

// Common flags
var (
	addr        = flag.String("addr", "127.0.0.1:5555", "Server address (host:port)")
	dialTimeout = flag.Duration("timeout", 5*time.Second, "Dial timeout")
	debugLevel  = flag.String("debuglevel", "warn", "Logging level: trace, debug, info, warn, error")
	wallet      = flag.Int64("wallet", poker.DefaultStartingChips, "Starting wallet balance")
	dump        = flag.Bool("dump", false, "Dump every received message")
	showLog     = flag.Bool("log", false, "Print server log lines")
	asJSON      = flag.Bool("json", false, "Print deals, results and classified hands as JSON")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [global flags] <command> [args]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  play [-ante N] [-pairplus N]     Deal a hand and play it")
		fmt.Fprintln(os.Stderr, "  fold [-ante N] [-pairplus N]     Deal a hand and fold it")
		fmt.Fprintln(os.Stderr, "  autoplay [-ante N] [-pairplus N] N")
		fmt.Fprintln(os.Stderr, "                                   Play N hands, folding below Q-6-4")
		fmt.Fprintln(os.Stderr, "  classify C1 C2 C3                Classify a hand offline (e.g. As Kd Qh)")
		fmt.Fprintln(os.Stderr, "  chat TEXT                        Send a chat message")
		fmt.Fprintln(os.Stderr, "  watch                            Stream server log lines")
		fmt.Fprintln(os.Stderr, "\nWith -json, deals, results and classify output are printed as JSON.")
		fmt.Fprintln(os.Stderr, "\nGlobal flags:")
		flag.PrintDefaults()
	}

	// Suppress default flag errors to avoid noisy usage on subcommands
	flag.CommandLine.SetOutput(io.Discard)
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "classify" {
		if err := handleClassify(args); err != nil {
			fatalErr(err)
		}
		return
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: *debugLevel})
	if err != nil {
		fatalErr(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c, err := client.Dial(ctx, client.Config{
		Addr:        *addr,
		DialTimeout: *dialTimeout,
		Log:         logBackend.Logger("CLNT"),
	})
	if err != nil {
		fatalErr(err)
	}
	defer c.Close()

	s := &session{c: c, wallet: client.NewWallet(*wallet)}
	if _, err := s.next(protocol.TypeWelcome); err != nil {
		fatalErr(fmt.Errorf("no welcome from server: %w", err))
	}

	switch cmd {
	case "play":
		err = handleHand(s, args, "play", false)
	case "fold":
		err = handleHand(s, args, "fold", true)
	case "autoplay":
		err = handleAutoplay(s, args)
	case "chat":
		err = handleChat(s, args)
	case "watch":
		err = handleWatch(ctx, c)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatalErr(err)
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func fatalErr(err error) {
	fatal(err.Error())
}

// session pairs a client connection with the player's wallet.
type session struct {
	c      *client.Client
	wallet *client.Wallet
}

func (s *session) onLog(line string) {
	if *showLog {
		fmt.Println(renderLog([]string{line}))
	}
}

// next waits for a message of type want, printing logs on the way.
func (s *session) next(want protocol.Type) (*protocol.Message, error) {
	for {
		m, err := s.c.Next(s.onLog)
		if err != nil {
			return nil, err
		}
		if *dump {
			spew.Fdump(os.Stderr, m)
		}
		if m.Type == want {
			return m, nil
		}
	}
}

func (s *session) playHand(ante, pairPlus int64, fold func(*protocol.Message) bool) (*protocol.Message, error) {
	if err := s.wallet.Bet(ante, pairPlus); err != nil {
		return nil, err
	}
	if err := s.c.StartHand(ante, pairPlus); err != nil {
		return nil, err
	}
	deal, err := s.next(protocol.TypeGameDeal)
	if err != nil {
		return nil, err
	}
	if *asJSON {
		if err := writeJSON(os.Stdout, dealReport(deal)); err != nil {
			return nil, err
		}
	} else {
		fmt.Println(renderDeal(deal))
	}

	if fold(deal) {
		err = s.c.Fold(deal.PlayerHand, deal.DealerHand, ante, pairPlus)
	} else {
		err = s.c.Play(deal.PlayerHand, deal.DealerHand, ante, pairPlus)
	}
	if err != nil {
		return nil, err
	}
	res, err := s.next(protocol.TypeGameResult)
	if err != nil {
		return nil, err
	}
	s.wallet.Settle(res)
	if *asJSON {
		return res, writeJSON(os.Stdout, resultReport(res, s.wallet.Balance()))
	}
	fmt.Println(renderResult(res, s.wallet.Balance()))
	return res, nil
}

func wagerFlags(name string) (*flag.FlagSet, *int64, *int64) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ante := fs.Int64("ante", 10, "Ante wager")
	pairPlus := fs.Int64("pairplus", 0, "Pair plus wager")
	return fs, ante, pairPlus
}

func handleHand(s *session, args []string, name string, fold bool) error {
	fs, ante, pairPlus := wagerFlags(name)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	_, err := s.playHand(*ante, *pairPlus, func(*protocol.Message) bool { return fold })
	return err
}

// Queen-six-four is the usual minimum playing hand.
var minPlayHand = []poker.Card{
	poker.MustCard(poker.Club, poker.Queen),
	poker.MustCard(poker.Diamond, poker.Six),
	poker.MustCard(poker.Heart, poker.Four),
}

func shouldFold(deal *protocol.Message) bool {
	// Q-6-4 stands in for the dealer: fold when it beats the player.
	cmp, err := poker.CompareHands(minPlayHand, deal.PlayerHand)
	if err != nil {
		return false
	}
	return cmp < 0
}

func handleAutoplay(s *session, args []string) error {
	fs, ante, pairPlus := wagerFlags("autoplay")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("autoplay: %w", err)
	}
	if fs.NArg() != 1 {
		return errors.New("autoplay requires the number of hands")
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil || n < 1 {
		return fmt.Errorf("autoplay: invalid hand count %q", fs.Arg(0))
	}

	start := s.wallet.Balance()
	for i := 0; i < n; i++ {
		if _, err := s.playHand(*ante, *pairPlus, shouldFold); err != nil {
			if errors.Is(err, client.ErrInsufficientFunds) {
				fmt.Printf("Stopping after %d hands: %v\n", i, err)
				break
			}
			return err
		}
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Wallet: $%d (%+d)", s.wallet.Balance(), s.wallet.Balance()-start)))
	return nil
}

func handleClassify(args []string) error {
	hand, err := poker.ParseHand(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if _, err := poker.Classify(hand); err != nil {
		return err
	}
	payout, _ := poker.PairPlusPayout(hand, 1)
	if *asJSON {
		return writeJSON(os.Stdout, classifyReport(hand, payout))
	}
	fmt.Println(renderHand("Hand", hand))
	fmt.Printf("Pair plus pays %d to 1\n", payout)
	return nil
}

func handleChat(s *session, args []string) error {
	if len(args) == 0 {
		return errors.New("chat requires a message")
	}
	return s.c.Chat(strings.Join(args, " "))
}

func handleWatch(ctx context.Context, c *client.Client) error {
	return c.Run(ctx, func(m *protocol.Message) {
		if *dump {
			spew.Fdump(os.Stderr, m)
		}
		if m.Type == protocol.TypeLog {
			fmt.Println(renderLog(m.Lines))
		}
	})
}
