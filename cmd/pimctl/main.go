package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/danmuck/pimd/internal/logging"
	"github.com/danmuck/pimd/internal/protocol"
	"github.com/danmuck/pimd/internal/protocol/session"
	"github.com/docopt/docopt-go"
)

const version = "0.1.0"

const usage = `pimctl, a pimd client.

Usage:
    pimctl monitor [--socket=<path>] [--network=<net>] [--name=<name>] [--session=<id>] [--all] [--types=<list>] [--count=<n>]
    pimctl hello [--socket=<path>] [--network=<net>]
    pimctl -h | --help
    pimctl --version

Options:
    -h --help          Show this screen.
    --version          Show version.
    --socket=<path>    Server address [default: /tmp/pimd.socket].
    --network=<net>    unix or tcp [default: unix].
    --name=<name>      Subscriber name [default: pimctl].
    --session=<id>     Session id sent with the subscription [default: pimctl].
    --all              Receive every change regardless of filter.
    --types=<list>     Comma separated change types, e.g. items,collections [default: items,collections,tags,relations].
    --count=<n>        Exit after n notifications, 0 runs until interrupted [default: 0].`

var changeTypesByName = map[string]protocol.ChangeType{
	"items":         protocol.ItemChanges,
	"collections":   protocol.CollectionChanges,
	"tags":          protocol.TagChanges,
	"relations":     protocol.RelationChanges,
	"subscriptions": protocol.SubscriptionChanges,
	"debug":         protocol.ChangeNotifications,
}

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pimctl: %v\n", err)
		os.Exit(2)
	}
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "pimctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts docopt.Opts) error {
	network, _ := opts.String("--network")
	addr, _ := opts.String("--socket")

	client, err := session.Dial(ctx, network, addr, session.DefaultConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	if hello, _ := opts.Bool("hello"); hello {
		h := client.Hello()
		fmt.Printf("%s protocol=%d generation=%d: %s\n", h.ServerName, h.Protocol, h.Generation, h.Message)
		return client.Logout()
	}

	cmd, err := monitorCommand(opts)
	if err != nil {
		return err
	}
	count, err := countOption(opts)
	if err != nil {
		return err
	}
	name, _ := opts.String("--name")
	sessionID, _ := opts.String("--session")
	if err := client.CreateSubscription(ctx, name, sessionID); err != nil {
		return err
	}
	if err := client.ModifySubscription(ctx, cmd); err != nil {
		return err
	}

	for seen := 0; count == 0 || seen < count; seen++ {
		ntf, err := client.NextNotification(ctx)
		if err != nil {
			return err
		}
		line, err := protocol.DebugJSON(ntf)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	return client.Logout()
}

func monitorCommand(opts docopt.Opts) (*protocol.ModifySubscriptionCommand, error) {
	raw, _ := opts.String("--types")
	types, err := parseChangeTypes(raw)
	if err != nil {
		return nil, err
	}
	all, _ := opts.Bool("--all")
	return &protocol.ModifySubscriptionCommand{
		ModifiedParts: protocol.ModifyTypes | protocol.ModifyAdd | protocol.ModifyAllFlag,
		StartTypes:    types,
		AllMonitored:  all,
	}, nil
}

func countOption(opts docopt.Opts) (int, error) {
	raw, _ := opts.String("--count")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid --count %q", raw)
	}
	return n, nil
}

func parseChangeTypes(raw string) ([]protocol.ChangeType, error) {
	var out []protocol.ChangeType
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		t, ok := changeTypesByName[part]
		if !ok {
			return nil, fmt.Errorf("unknown change type %q", part)
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, errors.New("no change types selected")
	}
	return out, nil
}
