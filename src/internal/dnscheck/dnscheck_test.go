package dnscheck

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

func startTestResolver(t *testing.T, handler dns.HandlerFunc) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	server := &dns.Server{PacketConn: pc, Handler: handler}
	go func() {
		_ = server.ActivateAndServe()
	}()
	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	return pc.LocalAddr().String()
}

func answerWith(ip string) dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)
		resp.Answer = append(resp.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   req.Question[0].Name,
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    60,
			},
			A: net.ParseIP(ip),
		})
		_ = w.WriteMsg(resp)
	}
}

func TestResolve_Success(t *testing.T) {
	addr := startTestResolver(t, answerWith("198.51.100.10"))

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatalf("NewChecker() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ips, err := checker.Resolve(ctx, "example.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(ips) != 1 || ips[0].String() != "198.51.100.10" {
		t.Errorf("Resolve() = %v", ips)
	}
}

func TestResolve_NXDomain(t *testing.T) {
	addr := startTestResolver(t, func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetRcode(req, dns.RcodeNameError)
		_ = w.WriteMsg(resp)
	})

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := checker.Resolve(ctx, "nonexistent.invalid"); err == nil {
		t.Fatal("expected error for NXDOMAIN response")
	}
}

func TestResolve_NoAnswers(t *testing.T) {
	addr := startTestResolver(t, func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)
		_ = w.WriteMsg(resp)
	})

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := checker.Resolve(ctx, "example.com"); err == nil {
		t.Fatal("expected error when response has no A records")
	}
}

func TestNewChecker_DefaultPort(t *testing.T) {
	checker, err := NewChecker("10.0.0.243")
	if err != nil {
		t.Fatalf("NewChecker() error = %v", err)
	}
	if checker.address != "10.0.0.243:53" {
		t.Errorf("address = %q, want default port appended", checker.address)
	}
}

func TestVerify_ResolverDown(t *testing.T) {
	// Nothing listens here; Verify must fail fast instead of hanging.
	checker, err := NewChecker("127.0.0.1:1")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := checker.Verify(ctx); err == nil {
		t.Fatal("expected error when resolver is unreachable")
	}
}
