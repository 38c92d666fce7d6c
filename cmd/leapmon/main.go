// Package main implements a small monitor that connects to a Lutron
// processor via LEAP, periodically logs a snapshot of the area/zone/device
// catalog as it fills in, and reports per-Url request latency.
package main

import (
	"context"
	"flag"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leap-go/leap/leap"

	"github.com/MatusOllah/slogcolor"
	"gopkg.in/yaml.v3"
)

const namesFile = "leapmon-names.yaml"

var (
	isVerbose = flag.Bool("verbose", false, "Enable display of DEBUG log messages")
	host      = flag.String("host", "", "Processor hostname or IP (required)")
	port      = flag.Int("port", 8081, "Processor LEAP port")
	username  = flag.String("username", "", "Login id")
	password  = flag.String("password", "", "Login password")
	certFile  = flag.String("cert", "", "Client certificate PEM file")
	keyFile   = flag.String("key", "", "Client key PEM file")
	caChain   = flag.String("cachain", "", "CA bundle PEM file for pinning the processor's cert")
	verifyTLS = flag.Bool("verify-tls", false, "Enable hostname verification (most processors need this off)")
)

// names caches the id->name mapping discovered from area/zone/device
// definitions, so restarts don't have to wait for a fresh enumeration to
// print human-readable log lines. The yaml.Node keeps any hand-written
// file comments intact across a rewrite.
type names struct {
	mu    sync.RWMutex
	table map[string]string // "zone:842" -> "Kitchen Pendant"
	yaml  yaml.Node
}

func (n *names) load(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := yaml.Unmarshal(data, &n.yaml); err != nil {
		return err
	}
	return yaml.Unmarshal(data, &n.table)
}

func (n *names) write(fn string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Find names not in the original file
	newNames := maps.Clone(n.table)

	// Find (or create) the root mapping of id -> name
	var mapping *yaml.Node
	if len(n.yaml.Content) == 0 {
		mapping = &yaml.Node{
			Kind: yaml.MappingNode,
		}
		n.yaml.Content = append(n.yaml.Content, mapping)
	} else {
		mapping = n.yaml.Content[0]
	}

	// mapping.Content is a list of [key, value, key, value, ...]
	for i := 0; i < len(mapping.Content); i += 2 {
		k := mapping.Content[i]
		delete(newNames, k.Value)
	}

	if len(newNames) == 0 {
		slog.Debug("Not writing out names cache, as no new data to add", "fn", fn)
		return nil
	}

	// Append missing names to the YAML document, leaving existing entries
	// (and their comments) untouched
	for k, v := range newNames {
		yk := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: k,
			Tag:   "!!str",
			Style: yaml.DoubleQuotedStyle,
		}
		yv := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: v,
			Tag:   "!!str",
			Style: yaml.DoubleQuotedStyle,
		}
		mapping.Content = append(mapping.Content, yk, yv)
	}

	f, err := os.CreateTemp(".", strings.Join([]string{".", fn, "*"}, ""))
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(&n.yaml); err != nil {
		return err
	}

	os.Rename(f.Name(), fn)
	return nil
}

func (n *names) remember(kind string, id int, name string) {
	if name == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.table == nil {
		n.table = make(map[string]string)
	}
	n.table[kind+":"+strconv.Itoa(id)] = name
}

func main() {
	flag.Parse()

	opts := slogcolor.DefaultOptions
	if *isVerbose {
		opts.Level = slog.LevelDebug
	} else {
		opts.Level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, opts)))

	if *host == "" {
		slog.Error("missing required -host flag")
		os.Exit(2)
	}

	cache := &names{}
	if err := cache.load(namesFile); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("names cache does not exist yet", "fn", namesFile)
		} else {
			slog.Error("unable to load names cache", "fn", namesFile, "err", err)
		}
	}
	defer func() {
		if err := cache.write(namesFile); err != nil {
			slog.Error("error writing names cache", "fn", namesFile, "err", err)
		}
	}()

	session, err := leap.NewSession(leap.Config{
		Host:      *host,
		Port:      *port,
		Username:  *username,
		Password:  *password,
		CertFile:  *certFile,
		KeyFile:   *keyFile,
		CAChain:   *caChain,
		VerifyTLS: *verifyTLS,
	})
	if err != nil {
		slog.Error("invalid session configuration", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("session loop exited", "err", err)
		}
	}()

	if err := session.EnsureConnected(ctx); err != nil {
		slog.Error("never connected", "err", err)
		return
	}

	if info, err := session.SessionInfo(ctx); err != nil {
		slog.Warn("SessionInfo", "err", err)
	} else {
		slog.Info("connected", "leap_version", info.ClientMajorVersion, "permissions", info.Permissions)
	}

	slog.Info("starting main loop")
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reportCatalog(session, cache)
			for url, stats := range session.Stats() {
				if stats.Stale(2 * time.Minute) {
					slog.Warn("leap: url has gone quiet", "url", url, "stats", stats)
					continue
				}
				slog.Debug("leap: latency", "stats", stats)
			}
		case <-ctx.Done():
			slog.Info("exiting due to signal")
			session.Close()
			return
		}
	}
}

func reportCatalog(session *leap.Session, cache *names) {
	catalog := session.Catalog()
	areas := catalog.Areas()
	zones := catalog.Zones()
	devices := catalog.Devices()

	for _, a := range areas {
		cache.remember("area", a.LeapID, a.Name)
	}
	for _, z := range zones {
		cache.remember("zone", z.LeapID, z.Name)
	}
	for _, d := range devices {
		cache.remember("device", d.LeapID, d.Name)
	}

	slog.Info("catalog snapshot", "areas", len(areas), "zones", len(zones), "devices", len(devices))
}
