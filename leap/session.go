package leap

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// Timing constants fixed by the protocol: a processor expects a ping at
// least this often, and reconnect attempts are spaced out rather than
// hammering a processor that's mid-reboot.
const (
	ReconnectDelay = 2 * time.Second
	PingInterval   = 60 * time.Second
	ConnectTimeout = 5 * time.Second
	RequestTimeout = 5 * time.Second

	defaultPort = 8081
)

// State names a point in the session's connection lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateBootstrapping
	StateReady
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateBootstrapping:
		return "Bootstrapping"
	case StateReady:
		return "Ready"
	case StateReconnecting:
		return "Reconnecting"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Config describes how to reach and authenticate to a processor.
type Config struct {
	Host string
	Port int // default 8081

	Username string
	Password string

	KeyFile  string
	CertFile string
	CAChain  string

	// VerifyTLS enables hostname verification and CERT_REQUIRED.
	// Lutron processors ship certs that don't match their LAN IP, so
	// this defaults to false; set true only against a processor whose
	// cert was issued for the hostname actually dialed.
	VerifyTLS bool
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	return c
}

func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("leap: config: Host is required")
	}
	if (c.KeyFile == "") != (c.CertFile == "") {
		return fmt.Errorf("leap: config: KeyFile and CertFile must both be set or both be empty")
	}
	return nil
}

func (c Config) buildTLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !c.VerifyTLS,
		// ServerName must be set whenever verification is enabled: unlike
		// tls.Dial, tls.Client (used in dial below, since the connection is
		// established manually) never infers it from the dialed address.
		ServerName: c.Host,
	}

	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("leap: loading client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if c.CAChain != "" {
		pem, err := os.ReadFile(c.CAChain)
		if err != nil {
			return nil, fmt.Errorf("leap: reading CA chain: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("leap: CA chain %s contained no usable certificates", c.CAChain)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}

// Session owns the reconnect loop, authentication handshake, bootstrap
// sequence, keepalive, and the model Catalog. It creates one Protocol
// per live connection and discards it on disconnect.
type Session struct {
	config    Config
	tlsConfig *tls.Config
	catalog   *Catalog

	mu       sync.Mutex
	state    State
	protocol *Protocol

	readyMu sync.Mutex
	readyCh chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSession validates config and prepares a Session. It does not dial;
// call Run to begin connecting.
func NewSession(config Config) (*Session, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	tlsConfig, err := config.buildTLSConfig()
	if err != nil {
		return nil, err
	}
	return &Session{
		config:    config,
		tlsConfig: tlsConfig,
		catalog:   NewCatalog(),
		readyCh:   make(chan struct{}),
		stopCh:    make(chan struct{}),
	}, nil
}

// Catalog returns the session's domain model store.
func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// Stats returns a snapshot of per-Url request latency for the current
// connection, or nil if no connection has ever been established.
func (s *Session) Stats() map[string]*LatencyStats {
	p := s.currentProtocol()
	if p == nil {
		return nil
	}
	return p.Stats()
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	slog.Debug("leap: session state change", "state", st.String())
}

func (s *Session) currentProtocol() *Protocol {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocol
}

func (s *Session) setProtocol(p *Protocol) {
	s.mu.Lock()
	s.protocol = p
	s.mu.Unlock()
}

func (s *Session) resetReadyGate() {
	s.readyMu.Lock()
	// A gate still open is kept, so callers already waiting on it are
	// released by the next successful bootstrap.
	select {
	case <-s.readyCh:
		s.readyCh = make(chan struct{})
	default:
	}
	s.readyMu.Unlock()
}

func (s *Session) closeReadyGate() {
	s.readyMu.Lock()
	close(s.readyCh)
	s.readyMu.Unlock()
}

// EnsureConnected blocks until the session has completed bootstrap at
// least once since the most recent (re)connection attempt began, ctx is
// done, or the session is closed.
func (s *Session) EnsureConnected(ctx context.Context) error {
	s.readyMu.Lock()
	ch := s.readyCh
	s.readyMu.Unlock()

	select {
	case <-ch:
		return nil
	case <-s.stopCh:
		return ErrSessionDisconnected{}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Request waits for the session to be connected, then forwards to the
// live Protocol.
func (s *Session) Request(ctx context.Context, msg Message) (Message, error) {
	if err := s.EnsureConnected(ctx); err != nil {
		return Message{}, err
	}
	p := s.currentProtocol()
	if p == nil {
		return Message{}, ErrSessionDisconnected{}
	}
	return p.Request(ctx, msg)
}

// RequestChecked is Request plus a StatusCode success check.
func (s *Session) RequestChecked(ctx context.Context, msg Message) (Message, error) {
	if err := s.EnsureConnected(ctx); err != nil {
		return Message{}, err
	}
	p := s.currentProtocol()
	if p == nil {
		return Message{}, ErrSessionDisconnected{}
	}
	return p.RequestChecked(ctx, msg)
}

// Subscribe waits for the session to be connected, then forwards to the
// live Protocol's Subscribe.
func (s *Session) Subscribe(ctx context.Context, msg Message, handler func(Message)) (string, Message, error) {
	if err := s.EnsureConnected(ctx); err != nil {
		return "", Message{}, err
	}
	p := s.currentProtocol()
	if p == nil {
		return "", Message{}, ErrSessionDisconnected{}
	}
	return p.Subscribe(ctx, msg, handler)
}

// SessionInfo reads /clientsetting, reporting the negotiated LEAP version
// and permission level granted to this login.
func (s *Session) SessionInfo(ctx context.Context) (ClientSettingBody, error) {
	resp, err := s.RequestChecked(ctx, ClientSettingRequest())
	if err != nil {
		return ClientSettingBody{}, err
	}
	body, ok := resp.Body.(ClientSettingBody)
	if !ok {
		return ClientSettingBody{}, fmt.Errorf("leap: unexpected /clientsetting body %T", resp.Body)
	}
	return body, nil
}

// Close stops the reconnect loop and tears down the live connection, if
// any. Safe to call more than once.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if p := s.currentProtocol(); p != nil {
			p.Close()
		}
	})
}

// Run drives the connect/authenticate/bootstrap/monitor/reconnect cycle
// until ctx is canceled or Close is called. It blocks; call it from its
// own goroutine.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.setState(StateClosed)
			return ctx.Err()
		case <-s.stopCh:
			s.setState(StateClosed)
			return nil
		default:
		}

		if err := s.monitorOnce(ctx); err != nil {
			slog.Error("leap: session attempt ended", "error", err)
		}

		select {
		case <-ctx.Done():
			s.setState(StateClosed)
			return ctx.Err()
		case <-s.stopCh:
			s.setState(StateClosed)
			return nil
		case <-time.After(ReconnectDelay):
		}
	}
}

func (s *Session) dial(ctx context.Context) (*tls.Conn, error) {
	dialer := &net.Dialer{Timeout: ConnectTimeout}
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("leap: dial %s: %w", addr, err)
	}

	conn := tls.Client(rawConn, s.tlsConfig)
	if err := conn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("leap: TLS handshake: %w", err)
	}
	return conn, nil
}

// monitorOnce runs one connect/login/bootstrap/ready cycle, returning
// when the connection drops or ctx/Close fires.
func (s *Session) monitorOnce(ctx context.Context) error {
	s.resetReadyGate()
	s.setState(StateConnecting)

	conn, err := s.dial(ctx)
	if err != nil {
		s.setState(StateReconnecting)
		return err
	}

	protocol := NewProtocol(conn)
	s.setProtocol(protocol)

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- protocol.Run(ctx) }()

	s.setState(StateAuthenticating)
	loginCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	_, err = protocol.RequestChecked(loginCtx, LoginRequest(s.config.Username, s.config.Password))
	cancel()
	if err != nil {
		protocol.Close()
		s.setState(StateReconnecting)
		return fmt.Errorf("leap: login: %w", err)
	}

	s.setState(StateBootstrapping)
	if err := s.bootstrap(ctx, protocol); err != nil {
		protocol.Close()
		s.setState(StateReconnecting)
		return fmt.Errorf("leap: bootstrap: %w", err)
	}

	s.setState(StateReady)
	s.closeReadyGate()

	pingDone := make(chan struct{})
	go s.keepalive(ctx, protocol, pingDone)
	defer close(pingDone)

	select {
	case err := <-runErrCh:
		s.setState(StateReconnecting)
		return err
	case <-ctx.Done():
		protocol.Close()
		return ctx.Err()
	case <-s.stopCh:
		protocol.Close()
		return nil
	}
}

// bootstrap issues the post-login subscriptions and initial enumeration,
// in the order a fresh connection needs them: zone/area/occupancy status
// subscriptions first (so no push is missed), then the one-shot device
// reads, then the catch-all unsolicited handler.
func (s *Session) bootstrap(ctx context.Context, p *Protocol) error {
	bootstrapCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	onUpdate := func(msg Message) { s.catalog.HandleResponse(msg) }

	subscribe := func(msg Message) error {
		_, resp, err := p.Subscribe(bootstrapCtx, msg, onUpdate)
		if err != nil {
			return err
		}
		if resp.Header.StatusCode != nil && !resp.Header.StatusCode.IsSuccessful() {
			return &ErrSessionResponse{Response: &resp}
		}
		// The initial response carries the full current enumeration for any
		// subscribe issued without SuppressMessageBody (e.g. every area's
		// status), so it seeds the catalog just like a later push would.
		s.catalog.HandleResponse(resp)
		return nil
	}

	if err := subscribe(SubscribeAllZonesStatus()); err != nil {
		return err
	}
	if err := subscribe(SubscribeAllAreasStatus()); err != nil {
		return err
	}
	if err := subscribe(SubscribeAllOccupancyStatus()); err != nil {
		return err
	}

	resp, err := p.RequestChecked(bootstrapCtx, ReadConnectedProcessor())
	if err != nil {
		return err
	}
	s.catalog.HandleResponse(resp)

	resp, err = p.RequestChecked(bootstrapCtx, ReadOtherDevices())
	if err != nil {
		return err
	}
	s.catalog.HandleResponse(resp)

	p.SubscribeUnsolicited(onUpdate)
	return nil
}

// keepalive pings the processor every PingInterval until done fires or a
// ping fails; a failed ping closes the protocol, which unblocks
// monitorOnce's select and triggers a reconnect.
func (s *Session) keepalive(ctx context.Context, p *Protocol, done <-chan struct{}) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
			_, err := p.RequestChecked(pingCtx, PingRequest())
			cancel()
			if err != nil {
				slog.Warn("leap: keepalive ping failed, closing session", "error", err)
				p.Close()
				return
			}
		}
	}
}
