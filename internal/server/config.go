package server

import (
	"github.com/danmuck/pimd/internal/protocol"
	"github.com/danmuck/pimd/internal/protocol/session"
)

// ServiceConfig configures the protocol listener and the inspection API.
type ServiceConfig struct {
	// Network is "unix" or "tcp".
	Network    string
	ListenAddr string
	// AdminListenAddr enables the HTTP inspection API when set.
	AdminListenAddr string
	CORSOrigins     []string
	ServerName      string
	HelloMessage    string
	Generation      int64
	Session         session.Config
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Network:         "unix",
		ListenAddr:      "/tmp/pimd.socket",
		AdminListenAddr: "",
		ServerName:      "pimd",
		HelloMessage:    "PIM storage server ready",
		Generation:      1,
		Session:         session.DefaultConfig(),
	}
}

func (c ServiceConfig) hello() *protocol.HelloResponse {
	return &protocol.HelloResponse{
		ServerName: c.ServerName,
		Message:    c.HelloMessage,
		Protocol:   protocol.ProtocolVersion,
		Generation: c.Generation,
	}
}
