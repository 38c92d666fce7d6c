package leap_test

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/leap-go/leap/leap"
)

// newProtocolPipe returns a Protocol wired to one end of an in-memory
// connection, and a bufio.Reader/raw net.Conn for the other end to play
// the part of the processor.
func newProtocolPipe(t *testing.T) (*leap.Protocol, net.Conn, *bufio.Reader) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	p := leap.NewProtocol(client)
	go p.Run(context.Background())

	return p, server, bufio.NewReader(server)
}

func TestProtocol_Request_MatchesTaggedResponse(t *testing.T) {
	p, server, reader := newProtocolPipe(t)

	respond := make(chan struct{})
	go func() {
		defer close(respond)
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		msg, err := leap.Decode([]byte(line))
		if err != nil {
			t.Errorf("server decode: %v", err)
			return
		}
		tag := msg.Header.Tag()
		reply, err := leap.Encode(leap.Message{
			CommuniqueType: leap.CommuniqueTypeReadResponse,
			Header: leap.Header{
				Url:        msg.Header.Url,
				ClientTag:  &tag,
				StatusCode: statusPtr(200, "OK"),
			},
		})
		if err != nil {
			t.Errorf("server encode: %v", err)
			return
		}
		server.Write(reply)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := p.Request(ctx, leap.Message{
		CommuniqueType: leap.CommuniqueTypeReadRequest,
		Header:         leap.Header{Url: "/server/status/ping"},
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if resp.Header.StatusCode == nil || !resp.Header.StatusCode.IsSuccessful() {
		t.Fatalf("StatusCode = %v, want successful", resp.Header.StatusCode)
	}

	<-respond
}

func TestProtocol_Close_FailsPendingRequests(t *testing.T) {
	p, server, _ := newProtocolPipe(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Request(context.Background(), leap.Message{
			CommuniqueType: leap.CommuniqueTypeReadRequest,
			Header:         leap.Header{Url: "/server/status/ping"},
		})
		errCh <- err
	}()

	// Give the request time to register before tearing down.
	time.Sleep(50 * time.Millisecond)
	server.Close()
	p.Close()

	select {
	case err := <-errCh:
		if !errors.As(err, &leap.ErrSessionDisconnected{}) {
			t.Fatalf("Request error = %v, want ErrSessionDisconnected", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Request did not return after Close")
	}
}

func TestProtocol_Subscribe_SuccessRegistersHandler(t *testing.T) {
	p, server, reader := newProtocolPipe(t)

	go func() {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		msg, err := leap.Decode([]byte(line))
		if err != nil {
			return
		}
		tag := msg.Header.Tag()
		ack, _ := leap.Encode(leap.Message{
			CommuniqueType: leap.CommuniqueTypeSubscribeResponse,
			Header:         leap.Header{Url: msg.Header.Url, ClientTag: &tag, StatusCode: statusPtr(200, "OK")},
		})
		server.Write(ack)

		push, _ := leap.Encode(leap.Message{
			CommuniqueType: leap.CommuniqueTypeReadResponse,
			Header: leap.Header{
				Url:             "/zone/842/status",
				ClientTag:       &tag,
				MessageBodyType: bodyTypePtr(leap.BodyTypeOneZoneStatus),
			},
			Body: leap.ZoneStatusBody{ZoneStatus: leap.ZoneStatus{Href: "/zone/842/status"}},
		})
		server.Write(push)
	}()

	updates := make(chan leap.Message, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tag, ack, err := p.Subscribe(ctx, leap.Message{
		CommuniqueType: leap.CommuniqueTypeSubscribeRequest,
		Header:         leap.Header{Url: "/zone/status"},
	}, func(msg leap.Message) { updates <- msg })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if ack.Header.StatusCode == nil || !ack.Header.StatusCode.IsSuccessful() {
		t.Fatalf("ack StatusCode = %v, want successful", ack.Header.StatusCode)
	}
	if tag == "" {
		t.Fatal("tag is empty")
	}

	select {
	case update := <-updates:
		if update.Header.Url != "/zone/842/status" {
			t.Errorf("update Url = %q", update.Header.Url)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription handler was never invoked")
	}
}

func TestProtocol_Subscribe_FailureLeavesNoRegistration(t *testing.T) {
	p, server, reader := newProtocolPipe(t)

	go func() {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		msg, err := leap.Decode([]byte(line))
		if err != nil {
			return
		}
		tag := msg.Header.Tag()
		nack, _ := leap.Encode(leap.Message{
			CommuniqueType: leap.CommuniqueTypeSubscribeResponse,
			Header:         leap.Header{Url: msg.Header.Url, ClientTag: &tag, StatusCode: statusPtr(403, "Forbidden")},
		})
		server.Write(nack)

		// A late push on the same tag must find no registration, since the
		// subscribe it would belong to never succeeded.
		push, _ := leap.Encode(leap.Message{
			CommuniqueType: leap.CommuniqueTypeReadResponse,
			Header:         leap.Header{Url: "/zone/842/status", ClientTag: &tag},
		})
		server.Write(push)
	}()

	called := false
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tag, ack, err := p.Subscribe(ctx, leap.Message{
		CommuniqueType: leap.CommuniqueTypeSubscribeRequest,
		Header:         leap.Header{Url: "/zone/status"},
	}, func(leap.Message) { called = true })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if ack.Header.StatusCode == nil || ack.Header.StatusCode.IsSuccessful() {
		t.Fatalf("ack StatusCode = %v, want unsuccessful", ack.Header.StatusCode)
	}
	if tag == "" {
		t.Fatal("tag is empty")
	}

	// Subscribe itself must not have registered a handler for tag: give the
	// late push above time to arrive and confirm it was never invoked.
	time.Sleep(50 * time.Millisecond)
	if called {
		t.Fatal("handler was invoked despite failed subscribe")
	}
}

func TestProtocol_Subscribe_RejectsMisuse(t *testing.T) {
	p, _, _ := newProtocolPipe(t)

	_, _, err := p.Subscribe(context.Background(), leap.Message{
		CommuniqueType: leap.CommuniqueTypeReadRequest,
		Header:         leap.Header{Url: "/zone/status"},
	}, func(leap.Message) {})
	if err == nil {
		t.Fatal("Subscribe with a ReadRequest succeeded, want error before any I/O")
	}

	_, _, err = p.Subscribe(context.Background(), leap.Message{
		CommuniqueType: leap.CommuniqueTypeSubscribeRequest,
		Header:         leap.Header{Url: "/zone/status"},
	}, nil)
	if err == nil {
		t.Fatal("Subscribe with a nil handler succeeded, want error before any I/O")
	}
}

func statusPtr(code int, message string) *leap.ResponseStatus {
	return &leap.ResponseStatus{Code: &code, Message: message}
}
