// Command idum-proxyd is the gateway's server entry point: it loads the
// JSON config, builds the gateway.Gateway and serves it over HTTP or
// HTTPS.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/gateway"
)

func main() {
	var (
		configPath = flag.String("config", "config.json", "path to the gateway's JSON config file")
		addr       = flag.String("addr", "", "listen address, overrides server.port from config (host:port)")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
		logFormat  = flag.String("log-format", "text", "log format: text or json")
	)
	flag.Parse()

	configureLogging(*logLevel, *logFormat)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	gw := gateway.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw.Start(ctx)

	if cfg.Server.Type == "local" {
		log.Info("server.type is local, gateway built but not bound to a listener")
		return
	}

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf("0.0.0.0:%d", resolvePort(cfg))
	}

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: gw.Mux(),
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	useTLS := cfg.SSL != nil && *cfg.SSL
	log.WithFields(log.Fields{"addr": listenAddr, "tls": useTLS}).Info("starting idum-proxyd")

	if useTLS {
		err = srv.ListenAndServeTLS("fullchain.pem", "privkey.pem")
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited with error")
	}
}

// resolvePort: an explicit server.port wins, otherwise 8443 when SSL is
// on, else 8080.
func resolvePort(cfg *config.Config) int {
	if cfg.Server.Port != 0 {
		return cfg.Server.Port
	}
	if cfg.SSL != nil && *cfg.SSL {
		return 8443
	}
	return 8080
}

func configureLogging(level, format string) {
	switch format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
