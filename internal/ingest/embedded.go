package ingest

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// StartEmbeddedServer runs an in-process NATS server for standalone
// deployments that have no external broker. The caller owns shutdown.
func StartEmbeddedServer(port int) (*natsserver.Server, error) {
	opts := &natsserver.Options{
		Host:    "127.0.0.1",
		Port:    port,
		NoLog:   true,
		NoSigs:  true,
		MaxConn: 256,
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("creating embedded NATS server: %w", err)
	}

	go srv.Start()
	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready after 10s")
	}

	return srv, nil
}
