package main

import (
	"testing"

	"github.com/danmuck/pimd/internal/protocol"
	"github.com/danmuck/pimd/internal/testutil/testlog"
	"github.com/docopt/docopt-go"
)

func parse(t *testing.T, args ...string) docopt.Opts {
	t.Helper()
	opts, err := docopt.ParseArgs(usage, args, version)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return opts
}

func TestMonitorCommandDefaults(t *testing.T) {
	testlog.Start(t)
	opts := parse(t, "monitor")
	cmd, err := monitorCommand(opts)
	if err != nil {
		t.Fatalf("monitor command: %v", err)
	}
	if !cmd.ModifiedParts.Has(protocol.ModifyTypes | protocol.ModifyAdd) {
		t.Fatalf("types not added: %b", cmd.ModifiedParts)
	}
	if len(cmd.StartTypes) != 4 || cmd.AllMonitored {
		t.Fatalf("unexpected defaults: %+v", cmd)
	}
	if n, err := countOption(opts); err != nil || n != 0 {
		t.Fatalf("count = %d, %v", n, err)
	}
	if addr, _ := opts.String("--socket"); addr != "/tmp/pimd.socket" {
		t.Fatalf("socket = %q", addr)
	}
}

func TestMonitorCommandOptions(t *testing.T) {
	testlog.Start(t)
	opts := parse(t, "monitor", "--all", "--types=Tags, debug", "--count=3")
	cmd, err := monitorCommand(opts)
	if err != nil {
		t.Fatalf("monitor command: %v", err)
	}
	if !cmd.AllMonitored {
		t.Fatalf("expected all monitored")
	}
	if len(cmd.StartTypes) != 2 || cmd.StartTypes[0] != protocol.TagChanges || cmd.StartTypes[1] != protocol.ChangeNotifications {
		t.Fatalf("unexpected types: %v", cmd.StartTypes)
	}
	if n, err := countOption(opts); err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestParseChangeTypesRejectsUnknown(t *testing.T) {
	testlog.Start(t)
	if _, err := parseChangeTypes("items,widgets"); err == nil {
		t.Fatalf("expected unknown type error")
	}
	if _, err := parseChangeTypes(" , "); err == nil {
		t.Fatalf("expected empty selection error")
	}
	if _, err := countOption(parse(t, "monitor", "--count=-1")); err == nil {
		t.Fatalf("expected negative count error")
	}
}
