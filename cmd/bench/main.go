package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jroosing/minidns/internal/dns"
)

func main() {
	var (
		server      = flag.String("server", "127.0.0.1:1053", "DNS server HOST:PORT")
		name        = flag.String("name", "example.com", "Query name")
		qtype       = flag.String("type", "A", "Query type")
		concurrency = flag.Int("concurrency", 200, "Number of concurrent workers")
		requests    = flag.Int("requests", 20000, "Total number of requests")
		timeout     = flag.Duration("timeout", 2*time.Second, "Per-request timeout")
		recvSize    = flag.Int("recv-size", 2048, "UDP receive buffer size")
	)
	flag.Parse()

	t, ok := dns.ParseRecordType(*qtype)
	if !ok {
		fmt.Fprintf(os.Stderr, "bench: unknown type %q\n", *qtype)
		os.Exit(2)
	}

	addr, err := net.ResolveUDPAddr("udp", *server)
	if err != nil {
		panic(err)
	}

	reqBytes, err := buildQuery(*name, t)
	if err != nil {
		panic(err)
	}

	conc := max(*concurrency, 1)
	total := max(*requests, 1)
	per := total / conc
	rem := total % conc

	lat := make([]float64, 0, total)
	var latMu sync.Mutex
	var servfail, empty, failed atomic.Uint64

	t0 := time.Now()
	var wg sync.WaitGroup
	for i := range conc {
		n := per
		if i < rem {
			n++
		}
		if n <= 0 {
			continue
		}
		wg.Add(1)
		go func(num int) {
			defer wg.Done()
			c, err := net.DialUDP("udp", nil, addr)
			if err != nil {
				failed.Add(uint64(num))
				return
			}
			defer c.Close()
			buf := make([]byte, *recvSize)
			for range num {
				start := time.Now()
				_ = c.SetDeadline(time.Now().Add(*timeout))
				if _, err := c.Write(reqBytes); err != nil {
					failed.Add(1)
					continue
				}
				nn, err := c.Read(buf)
				if err != nil {
					failed.Add(1)
					continue
				}
				off := 0
				h, err := dns.ParseHeader(buf[:nn], &off)
				if err != nil {
					failed.Add(1)
					continue
				}
				switch {
				case h.RCode() == dns.RCodeServFail:
					servfail.Add(1)
				case h.ANCount == 0:
					empty.Add(1)
				}
				ms := float64(time.Since(start).Microseconds()) / 1000.0
				latMu.Lock()
				lat = append(lat, ms)
				latMu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	elapsed := time.Since(t0).Seconds()

	if len(lat) == 0 {
		fmt.Printf("no successful requests (failed=%d)\n", failed.Load())
		return
	}
	sort.Float64s(lat)
	qps := float64(len(lat)) / elapsed

	fmt.Printf("server=%s name=%q type=%s concurrency=%d requests=%d\n", *server, *name, t, conc, len(lat))
	fmt.Printf("elapsed_s=%.3f qps=%.1f\n", elapsed, qps)
	fmt.Printf("latency_ms p50=%.3f p95=%.3f p99=%.3f min=%.3f max=%.3f\n",
		percentile(lat, 50), percentile(lat, 95), percentile(lat, 99), lat[0], lat[len(lat)-1])
	fmt.Printf("servfail=%d empty=%d failed=%d\n", servfail.Load(), empty.Load(), failed.Load())
}

func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted))*float64(p)/100.0) - 1
	return sorted[min(max(idx, 0), len(sorted)-1)]
}

func buildQuery(name string, qtype dns.RecordType) ([]byte, error) {
	m := dns.Message{
		Header:   dns.Header{ID: 0xBEEF, Flags: dns.RDFlag},
		Question: dns.NewQuestion(name, qtype, dns.ClassIN),
	}
	return m.Marshal()
}
