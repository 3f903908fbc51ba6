package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
	"time"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
)

const (
	pingTimeout        = 500 * time.Millisecond
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
	serverStopTimeout  = 2 * time.Second
)

// withClient runs fn against the configured API. When nothing answers on a
// loopback API URL, a `sprintdesk srv` child is started for the call.
func withClient(ctx context.Context, cfg *config.Config, flags *globalFlags, fn func(*api.Client) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	stop, err := ensureLocalServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer stop()

	client := api.NewClient(cfg.APIURL)
	if flags != nil && flags.actorID > 0 {
		client = client.WithActor(flags.actorID)
	}
	return fn(client)
}

func ensureLocalServer(ctx context.Context, cfg *config.Config) (func(), error) {
	client := api.NewClient(cfg.APIURL)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := client.Ping(pingCtx)
	cancel()
	if err == nil {
		return func() {}, nil
	}
	if !isLoopbackURL(cfg.APIURL) {
		return nil, fmt.Errorf("sprintdesk server at %s is unreachable: %w", cfg.APIURL, err)
	}

	child, err := startServerProcess(cfg)
	if err != nil {
		return nil, fmt.Errorf("start local server: %w", err)
	}
	if err := waitForServer(ctx, client, serverStartTimeout); err != nil {
		stopServerProcess(child)
		return nil, err
	}
	return func() { stopServerProcess(child) }, nil
}

func isLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func startServerProcess(cfg *config.Config) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	child := exec.Command(exe, "srv")
	child.Env = append(os.Environ(),
		"SPRINTDESK_DB="+cfg.Storage.DBPath,
		"SPRINTDESK_API_URL="+cfg.APIURL,
		"SPRINTDESK_STORAGE_DRIVER="+cfg.Storage.Driver,
		"SPRINTDESK_TIMEZONE="+cfg.Timezone,
	)
	child.Stdout = io.Discard
	child.Stderr = io.Discard

	if err := child.Start(); err != nil {
		return nil, err
	}
	return child, nil
}

// stopServerProcess interrupts the child so it can drain, then kills it.
func stopServerProcess(child *exec.Cmd) {
	done := make(chan struct{})
	go func() {
		_ = child.Wait()
		close(done)
	}()
	if err := child.Process.Signal(os.Interrupt); err != nil {
		_ = child.Process.Kill()
	}
	select {
	case <-done:
	case <-time.After(serverStopTimeout):
		_ = child.Process.Kill()
		<-done
	}
}

func waitForServer(ctx context.Context, client *api.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()
	for {
		pingCtx, pingCancel := context.WithTimeout(ctx, 200*time.Millisecond)
		err := client.Ping(pingCtx)
		pingCancel()
		if err == nil {
			return nil
		}
		var opErr *net.OpError
		if !errors.As(err, &opErr) {
			// Something else owns the port.
			return err
		}
		select {
		case <-ctx.Done():
			return errors.New("local sprintdesk server did not start in time")
		case <-ticker.C:
		}
	}
}
