package leap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
)

// Transport is the minimal surface Protocol needs from a connection: a
// byte stream to read CRLF-terminated frames from, a place to write them
// to, and a way to tear the whole thing down. *tls.Conn satisfies it.
type Transport interface {
	io.Reader
	io.Writer
	Close() error
}

// Protocol drives the request/response and subscription correlation for a
// single connection. It has no notion of reconnects or authentication;
// Session owns a Protocol for the lifetime of one live socket and
// discards it on disconnect.
type Protocol struct {
	transport Transport

	writeLock sync.Mutex

	pendingLock   sync.Mutex
	inFlight      map[string]chan Message
	subscriptions map[string]func(Message)

	unsolicitedLock sync.Mutex
	unsolicited     map[string]func(Message)
	unsolicitedSeq  int

	latencyLock  sync.Mutex
	latencyStats map[string]*LatencyStats

	closeOnce sync.Once
	closed    chan struct{}
}

// NewProtocol wraps transport with the tag-correlation bookkeeping
// described above. Call Run to begin reading frames.
func NewProtocol(transport Transport) *Protocol {
	return &Protocol{
		transport:     transport,
		inFlight:      make(map[string]chan Message),
		subscriptions: make(map[string]func(Message)),
		unsolicited:   make(map[string]func(Message)),
		latencyStats:  make(map[string]*LatencyStats),
		closed:        make(chan struct{}),
	}
}

// NewTag generates a fresh ClientTag. Exported so callers building their
// own Message (e.g. for a Subscribe they intend to Unsubscribe later) can
// learn the tag ahead of sending.
func (p *Protocol) NewTag() string {
	return uuid.NewString()
}

func (p *Protocol) ensureTag(msg *Message) string {
	if tag := msg.Header.Tag(); tag != "" {
		return tag
	}
	tag := p.NewTag()
	msg.Header.ClientTag = &tag
	return tag
}

// Request sends msg and waits for the single response carrying the same
// ClientTag. It returns ErrSessionDisconnected if the connection closes
// first, or ctx.Err() if ctx is done first.
func (p *Protocol) Request(ctx context.Context, msg Message) (Message, error) {
	tag := p.ensureTag(&msg)
	ch := make(chan Message, 1)

	p.pendingLock.Lock()
	p.inFlight[tag] = ch
	p.pendingLock.Unlock()

	start := time.Now()

	if err := p.send(msg); err != nil {
		p.pendingLock.Lock()
		delete(p.inFlight, tag)
		p.pendingLock.Unlock()
		return Message{}, err
	}

	select {
	case resp := <-ch:
		p.sampleLatency(msg.Header.Url, time.Since(start))
		return resp, nil
	case <-p.closed:
		return Message{}, ErrSessionDisconnected{}
	case <-ctx.Done():
		p.pendingLock.Lock()
		delete(p.inFlight, tag)
		p.pendingLock.Unlock()
		return Message{}, ctx.Err()
	}
}

// RequestChecked is Request, followed by a check that the response's
// StatusCode was successful; a non-2xx status is reported as
// *ErrSessionResponse rather than returned silently.
func (p *Protocol) RequestChecked(ctx context.Context, msg Message) (Message, error) {
	resp, err := p.Request(ctx, msg)
	if err != nil {
		return resp, err
	}
	if resp.Header.StatusCode != nil && !resp.Header.StatusCode.IsSuccessful() {
		return resp, &ErrSessionResponse{Response: &resp}
	}
	return resp, nil
}

// Subscribe sends a SubscribeRequest and waits for its SubscribeResponse,
// then registers handler to receive every subsequent message tagged with
// the same ClientTag (i.e. every update pushed for this subscription).
// The returned tag can later be passed to Unsubscribe.
func (p *Protocol) Subscribe(ctx context.Context, msg Message, handler func(Message)) (string, Message, error) {
	if msg.CommuniqueType != CommuniqueTypeSubscribeRequest {
		return "", Message{}, fmt.Errorf("leap: subscribe needs a SubscribeRequest, got %s", msg.CommuniqueType)
	}
	if handler == nil {
		return "", Message{}, fmt.Errorf("leap: subscribe needs a handler")
	}

	tag := p.ensureTag(&msg)
	ch := make(chan Message, 1)

	// Pushes arriving before the response is handled here wait on this gate.
	accepted := false
	decided := make(chan struct{})
	defer close(decided)

	p.pendingLock.Lock()
	p.inFlight[tag] = ch
	p.subscriptions[tag] = func(m Message) {
		<-decided
		if accepted {
			handler(m)
		}
	}
	p.pendingLock.Unlock()

	if err := p.send(msg); err != nil {
		p.pendingLock.Lock()
		delete(p.inFlight, tag)
		delete(p.subscriptions, tag)
		p.pendingLock.Unlock()
		return tag, Message{}, err
	}

	select {
	case resp := <-ch:
		p.pendingLock.Lock()
		delete(p.inFlight, tag) // further pushes, if any, are routed via subscriptions only
		if resp.Header.StatusCode != nil && resp.Header.StatusCode.IsSuccessful() {
			accepted = true
			p.subscriptions[tag] = handler
		} else {
			delete(p.subscriptions, tag)
			slog.Error("leap: subscribe failed, not registering", "url", msg.Header.Url, "tag", tag, "status", resp.Header.StatusCode)
		}
		p.pendingLock.Unlock()
		return tag, resp, nil
	case <-p.closed:
		return tag, Message{}, ErrSessionDisconnected{}
	case <-ctx.Done():
		p.pendingLock.Lock()
		delete(p.inFlight, tag)
		delete(p.subscriptions, tag)
		p.pendingLock.Unlock()
		return tag, Message{}, ctx.Err()
	}
}

// Unsubscribe stops routing updates for tag to its handler. It does not
// notify the processor; callers that want the processor to stop pushing
// updates must send an UpdateRequest or close the session.
func (p *Protocol) Unsubscribe(tag string) {
	p.pendingLock.Lock()
	defer p.pendingLock.Unlock()
	delete(p.subscriptions, tag)
}

// SubscribeUnsolicited registers handler to see every message that carries
// no ClientTag (e.g. button events the processor pushes without any
// explicit subscription). It returns an id for UnsubscribeUnsolicited.
func (p *Protocol) SubscribeUnsolicited(handler func(Message)) int {
	p.unsolicitedLock.Lock()
	defer p.unsolicitedLock.Unlock()
	p.unsolicitedSeq++
	id := p.unsolicitedSeq
	p.unsolicited[fmt.Sprintf("%d", id)] = handler
	return id
}

// UnsubscribeUnsolicited removes a handler registered with
// SubscribeUnsolicited.
func (p *Protocol) UnsubscribeUnsolicited(id int) {
	p.unsolicitedLock.Lock()
	defer p.unsolicitedLock.Unlock()
	delete(p.unsolicited, fmt.Sprintf("%d", id))
}

func (p *Protocol) fanOutUnsolicited(msg Message) {
	p.unsolicitedLock.Lock()
	handlers := make([]func(Message), 0, len(p.unsolicited))
	for _, h := range p.unsolicited {
		handlers = append(handlers, h)
	}
	p.unsolicitedLock.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("leap: unsolicited handler panicked", "panic", r)
				}
			}()
			h(msg)
		}()
	}
}

func (p *Protocol) send(msg Message) error {
	raw, err := Encode(msg)
	if err != nil {
		return fmt.Errorf("leap: send: %w", err)
	}

	p.writeLock.Lock()
	defer p.writeLock.Unlock()

	slog.Debug("leap: send", "url", msg.Header.Url, "tag", msg.Header.Tag())
	if _, err := p.transport.Write(raw); err != nil {
		// A failed write means the stream is gone: report it as a disconnect.
		return fmt.Errorf("%w: %v", ErrSessionDisconnected{}, err)
	}
	return nil
}

func (p *Protocol) sampleLatency(url string, d time.Duration) {
	p.latencyLock.Lock()
	ls, ok := p.latencyStats[url]
	if !ok {
		ls = NewLatencyStats(url)
		p.latencyStats[url] = ls
	}
	p.latencyLock.Unlock()
	ls.Sample(d)
}

// Stats returns a snapshot of per-Url latency statistics.
func (p *Protocol) Stats() map[string]*LatencyStats {
	p.latencyLock.Lock()
	defer p.latencyLock.Unlock()
	out := make(map[string]*LatencyStats, len(p.latencyStats))
	for k, v := range p.latencyStats {
		out[k] = v
	}
	return out
}

// String renders internal bookkeeping for debugging.
func (p *Protocol) String() string {
	p.pendingLock.Lock()
	defer p.pendingLock.Unlock()
	return spew.Sprintf(`
leap.Protocol(
  inFlight:      %v
  subscriptions: %v
)
`,
		len(p.inFlight),
		len(p.subscriptions),
	)
}

// Run reads frames from transport until it errs or closes, dispatching
// each to the in-flight request, active subscription, or unsolicited
// fan-out it's tagged for. Run blocks until the transport is exhausted;
// call it from its own goroutine. The returned error is nil only if ctx
// was canceled; any read error (including io.EOF) is returned otherwise.
func (p *Protocol) Run(ctx context.Context) error {
	defer p.Close()

	scanner := bufio.NewScanner(p.transport)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		msg, err := Decode(line)
		if err != nil {
			slog.Warn("leap: discarding unparsable frame", "error", err)
			continue
		}

		p.dispatch(msg)
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (p *Protocol) dispatch(msg Message) {
	tag := msg.Header.Tag()
	if tag == "" {
		p.fanOutUnsolicited(msg)
		return
	}

	p.pendingLock.Lock()
	if ch, ok := p.inFlight[tag]; ok {
		delete(p.inFlight, tag)
		p.pendingLock.Unlock()
		ch <- msg
		return
	}
	handler, ok := p.subscriptions[tag]
	p.pendingLock.Unlock()
	if ok {
		handler(msg)
		return
	}

	// A canceled Request's response lands here, as does any push for a
	// subscription that was since unregistered.
	slog.Warn("leap: unexpected message", "tag", tag, "url", msg.Header.Url)
}

// Close tears down the transport and fails every in-flight request with
// ErrSessionDisconnected. Safe to call more than once.
func (p *Protocol) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closed)

		p.pendingLock.Lock()
		p.inFlight = make(map[string]chan Message)
		p.subscriptions = make(map[string]func(Message))
		p.pendingLock.Unlock()

		err = p.transport.Close()
	})
	return err
}
