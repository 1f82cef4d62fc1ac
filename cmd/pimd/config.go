package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pimd/internal/server"
)

// pimd.toml key mapping to server settings.
type fileConfig struct {
	Network          string   `toml:"network"`
	Socket           string   `toml:"socket"`
	AdminAddr        string   `toml:"admin_addr"`
	CORSOrigins      []string `toml:"cors_origins"`
	ServerName       string   `toml:"server_name"`
	HelloMessage     string   `toml:"hello_message"`
	Generation       int64    `toml:"generation"`
	WaitTimeout      string   `toml:"wait_timeout"`
	WriteTimeout     string   `toml:"write_timeout"`
	HandshakeTimeout string   `toml:"handshake_timeout"`
	SendQueue        int      `toml:"send_queue"`
}

// loadServiceConfig overlays the keys present in path onto the defaults.
func loadServiceConfig(path string) (server.ServiceConfig, error) {
	cfg := server.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return server.ServiceConfig{}, fmt.Errorf("load pimd config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return server.ServiceConfig{}, fmt.Errorf("load pimd config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("network") {
		cfg.Network = strings.TrimSpace(raw.Network)
	}
	if meta.IsDefined("socket") {
		cfg.ListenAddr = strings.TrimSpace(raw.Socket)
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = raw.CORSOrigins
	}
	if meta.IsDefined("server_name") {
		cfg.ServerName = strings.TrimSpace(raw.ServerName)
	}
	if meta.IsDefined("hello_message") {
		cfg.HelloMessage = raw.HelloMessage
	}
	if meta.IsDefined("generation") {
		cfg.Generation = raw.Generation
	}
	if meta.IsDefined("send_queue") {
		cfg.Session.SendQueue = raw.SendQueue
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"wait_timeout", raw.WaitTimeout, &cfg.Session.WaitTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.Session.WriteTimeout},
		{"handshake_timeout", raw.HandshakeTimeout, &cfg.Session.HandshakeTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return server.ServiceConfig{}, fmt.Errorf("load pimd config: %s: %w", d.key, err)
		}
		*d.dst = v
	}

	switch cfg.Network {
	case "unix", "tcp":
	default:
		return server.ServiceConfig{}, fmt.Errorf("load pimd config: unsupported network %q (expected unix or tcp)", cfg.Network)
	}

	cfg.Session = cfg.Session.WithDefaults()
	return cfg, nil
}
