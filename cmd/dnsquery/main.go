package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/jroosing/minidns/internal/dns"
	mdns "github.com/miekg/dns"
)

func main() {
	var (
		server   = flag.String("server", "127.0.0.1:1053", "DNS server HOST:PORT")
		name     = flag.String("name", "example.com", "Query name")
		qtype    = flag.String("type", "A", "Query type (A, AAAA, CNAME, TXT, ... or TYPE<n>)")
		timeout  = flag.Duration("timeout", 2*time.Second, "Timeout")
		recvSize = flag.Int("recv-size", 2048, "UDP receive buffer size")
		quiet    = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Parse()

	t, ok := dns.ParseRecordType(*qtype)
	if !ok {
		fmt.Fprintf(os.Stderr, "dnsquery: unknown type %q\n", *qtype)
		os.Exit(2)
	}

	resp, err := queryUDP(*server, *name, t, *timeout, *recvSize)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "dnsquery error: %v\n", err)
		}
		os.Exit(1)
	}
	if *quiet {
		return
	}

	msg := new(mdns.Msg)
	if err := msg.Unpack(resp); err != nil {
		fmt.Printf("received %d bytes (unparseable: %v)\n", len(resp), err)
		os.Exit(1)
	}

	fmt.Printf("id=%d rcode=%s answers=%d bytes=%d\n",
		msg.Id,
		mdns.RcodeToString[msg.Rcode],
		len(msg.Answer),
		len(resp),
	)
	for _, rr := range msg.Answer {
		fmt.Println(rr.String())
	}
}

func queryUDP(server, name string, qtype dns.RecordType, timeout time.Duration, recvSize int) ([]byte, error) {
	reqBytes, err := buildQuery(name, qtype)
	if err != nil {
		return nil, err
	}

	c, err := net.Dial("udp", server)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	_ = c.SetDeadline(time.Now().Add(timeout))
	if _, err := c.Write(reqBytes); err != nil {
		return nil, err
	}
	buf := make([]byte, recvSize)
	n, err := c.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func buildQuery(name string, qtype dns.RecordType) ([]byte, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	m := dns.Message{
		Header:   dns.Header{ID: uint16(mdns.Id()), Flags: dns.RDFlag},
		Question: dns.NewQuestion(name, qtype, dns.ClassIN),
	}
	return m.Marshal()
}
