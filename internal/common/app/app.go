package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM, so an
// in-flight ingestion run can unwind cleanly.
func ShutdownContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			log.Infof("received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
