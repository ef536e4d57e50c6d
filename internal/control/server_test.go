// ABOUTME: Tests for the control websocket server
// ABOUTME: Drives a real engine with a fake device through the protocol client
package control

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/soundbox/internal/audiotest"
	"github.com/harperreed/soundbox/internal/client"
	"github.com/harperreed/soundbox/internal/protocol"
	"github.com/harperreed/soundbox/pkg/soundengine"
)

func newTestServer(t *testing.T) (*Server, *client.Client, *audiotest.Device) {
	t.Helper()

	dev := audiotest.NewDevice()
	fetcher := audiotest.NewFetcher()
	fetcher.Add("a.wav", audiotest.SilentWAV(8000, 1, 2))

	var srv *Server
	engine := soundengine.New(soundengine.Config{
		Fetcher:   fetcher,
		NewDevice: dev.Factory(),
		OnStateChange: func(info soundengine.InstanceInfo) {
			srv.Broadcast(info)
		},
	})
	srv = New(Config{Name: "Test Box"}, engine)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c := client.NewClient(client.Config{ServerAddr: strings.TrimPrefix(ts.URL, "http://")})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(c.Close)

	return srv, c, dev
}

func TestHello(t *testing.T) {
	srv, c, _ := newTestServer(t)

	hello := c.Hello()
	if hello.ServerID != srv.ServerID() {
		t.Errorf("expected server id %s, got %s", srv.ServerID(), hello.ServerID)
	}
	if hello.SessionID == "" {
		t.Error("expected a session id")
	}
	if hello.Name != "Test Box" || hello.Version != protocol.Version {
		t.Errorf("unexpected hello: %+v", hello)
	}
	if srv.Clients() != 1 {
		t.Errorf("expected 1 client, got %d", srv.Clients())
	}
}

func TestPlayBeforeInit(t *testing.T) {
	_, c, _ := newTestServer(t)
	ctx := context.Background()

	res, err := c.Play(ctx, "a.wav", false, nil, "")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if res.OK || !strings.Contains(res.Error, "not initialized") {
		t.Errorf("expected not-initialized failure, got %+v", res)
	}
}

func TestCommandFlow(t *testing.T) {
	_, c, dev := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if res, err := c.Init(ctx); err != nil || !res.OK {
		t.Fatalf("Init: res=%+v err=%v", res, err)
	}

	volume := 0.5
	res, err := c.Play(ctx, "a.wav", true, &volume, "bgm")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !res.OK || res.ID != "bgm" {
		t.Fatalf("unexpected play result: %+v", res)
	}
	if v := dev.LastVoice(); v == nil || v.Config.Volume != 0.5 || !v.Config.Loop {
		t.Errorf("unexpected voice: %+v", v)
	}

	select {
	case inst := <-c.States:
		if inst.ID != "bgm" || inst.State != "playing" {
			t.Errorf("unexpected state broadcast: %+v", inst)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for state broadcast")
	}

	instances, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(instances) != 1 || instances[0].ID != "bgm" || instances[0].Duration != 2 {
		t.Errorf("unexpected instances: %+v", instances)
	}

	steps := []struct {
		name string
		do   func() (protocol.Result, error)
		ok   bool
	}{
		{"pause", func() (protocol.Result, error) { return c.Pause(ctx, "bgm") }, true},
		{"resume", func() (protocol.Result, error) { return c.Resume(ctx, "bgm") }, true},
		{"stop", func() (protocol.Result, error) { return c.Stop(ctx, "bgm") }, true},
		{"stop again", func() (protocol.Result, error) { return c.Stop(ctx, "bgm") }, false},
	}
	for _, step := range steps {
		res, err := step.do()
		if err != nil {
			t.Fatalf("%s failed: %v", step.name, err)
		}
		if res.OK != step.ok {
			t.Errorf("%s: expected ok=%v, got %+v", step.name, step.ok, res)
		}
	}
}

func TestPlayMissingSourceReportsStatus(t *testing.T) {
	_, c, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.Init(ctx)
	res, err := c.Play(ctx, "missing.wav", false, nil, "")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if res.OK || res.Status != http.StatusNotFound {
		t.Errorf("expected 404 failure, got %+v", res)
	}

	res, err = c.Load(ctx, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.OK || res.Error != "missing source" {
		t.Errorf("expected missing source failure, got %+v", res)
	}
}

func TestUnknownMessageType(t *testing.T) {
	_, c, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Do(ctx, "sound/explode", protocol.Command{})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if res.OK || res.Command != "sound/explode" {
		t.Errorf("expected failure for unknown type, got %+v", res)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	engine := soundengine.New(soundengine.Config{
		Fetcher:   audiotest.NewFetcher(),
		NewDevice: audiotest.NewDevice().Factory(),
	})
	srv := New(Config{}, engine)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	c := client.NewClient(client.Config{ServerAddr: ln.Addr().String()})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
