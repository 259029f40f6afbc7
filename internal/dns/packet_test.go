package dns_test

import (
	"net/netip"
	"testing"

	"github.com/bassosimone/runtimex"
	"github.com/jroosing/minidns/internal/dns"
	mdns "github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplePacket is a Win10 nslookup query for example.com A.
var samplePacket = []byte{
	0x00, 0x04, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x07, 0x65, 0x78, 0x61,
	0x6d, 0x70, 0x6c, 0x65, 0x03, 0x63, 0x6f, 0x6d, 0x00, 0x00, 0x01, 0x00, 0x01,
}

func TestMessageMarshal_ProgrammaticQueryMatchesCapture(t *testing.T) {
	m := dns.Message{
		Header:   dns.Header{ID: 4, Flags: 256},
		Question: dns.NewQuestion("example.com", dns.TypeA, dns.ClassIN),
	}
	b, err := m.Marshal()
	require.NoError(t, err)
	assert.Equal(t, samplePacket, b)
}

func TestNewResponse_SingleAnswer(t *testing.T) {
	query := runtimex.PanicOnError1(dns.ParseQuery(samplePacket))
	answer := dns.NewRecord(query.Question.Name, 100, dns.A{Addr: netip.MustParseAddr("127.0.0.1")})

	b, err := dns.NewResponse(query, []dns.ResourceRecord{answer}).Marshal()
	require.NoError(t, err)

	expected := []byte{
		0x00, 0x04, 0x80, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x07, 0x65, 0x78, 0x61,
		0x6d, 0x70, 0x6c, 0x65, 0x03, 0x63, 0x6f, 0x6d, 0x00, 0x00, 0x01, 0x00, 0x01, 0x07, 0x65, 0x78,
		0x61, 0x6d, 0x70, 0x6c, 0x65, 0x03, 0x63, 0x6f, 0x6d, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
		0x00, 0x64, 0x00, 0x04, 0x7f, 0x00, 0x00, 0x01,
	}
	assert.Equal(t, expected, b)
}

func TestNewResponse_NoAnswers(t *testing.T) {
	query := runtimex.PanicOnError1(dns.ParseQuery(samplePacket))

	resp := dns.NewResponse(query, nil)
	b, err := resp.Marshal()
	require.NoError(t, err)

	assert.Empty(t, resp.Answers)
	assert.NotEqual(t, samplePacket, b, "response must not echo the query")
	assert.Len(t, b, len(samplePacket))
	assert.Equal(t, []byte{0x80, 0x00}, b[2:4])
	assert.Equal(t, []byte{0x00, 0x00}, b[6:8], "ANCount")
	assert.Equal(t, samplePacket[dns.HeaderSize:], b[dns.HeaderSize:])
}

func TestMessageMarshal_LengthAndCounts(t *testing.T) {
	query := runtimex.PanicOnError1(dns.ParseQuery(samplePacket))
	answers := []dns.ResourceRecord{
		dns.NewRecord(dns.NewName("alias.example.com"), 3600, dns.NewCNAME("example.com")),
		dns.NewRecord(dns.NewName("example.com"), 100, dns.A{Addr: netip.MustParseAddr("127.0.0.1")}),
		dns.NewRecord(dns.NewName("example.com"), 100, dns.AAAA{Addr: netip.MustParseAddr("::1")}),
		dns.NewRecord(dns.NewName("example.com"), 100, dns.TXT{Text: "This is some text."}),
	}

	for k := 0; k <= len(answers); k++ {
		resp := dns.NewResponse(query, answers[:k])
		b, err := resp.Marshal()
		require.NoError(t, err)

		off := 0
		h := runtimex.PanicOnError1(dns.ParseHeader(b, &off))
		assert.Equal(t, uint16(k), h.ANCount)
		assert.Equal(t, uint16(1), h.QDCount)
		assert.Zero(t, h.NSCount)
		assert.Zero(t, h.ARCount)

		want := dns.HeaderSize + len(runtimex.PanicOnError1(query.Question.Marshal()))
		for _, rr := range answers[:k] {
			want += len(runtimex.PanicOnError1(rr.Marshal()))
		}
		assert.Equal(t, want, len(b))
	}
}

func TestMessageMarshal_IgnoresStaleCounts(t *testing.T) {
	m := dns.Message{
		Header:   dns.Header{ID: 9, Flags: dns.QRFlag, QDCount: 7, ANCount: 3, NSCount: 2, ARCount: 1},
		Question: dns.NewQuestion("example.com", dns.TypeA, dns.ClassIN),
	}
	b, err := m.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0, 0, 0, 0, 0, 0}, b[4:12])
}

func TestMessageMarshal_FailsAtomically(t *testing.T) {
	query := runtimex.PanicOnError1(dns.ParseQuery(samplePacket))
	answers := []dns.ResourceRecord{
		dns.NewRecord(query.Question.Name, 100, dns.A{Addr: netip.MustParseAddr("127.0.0.1")}),
		dns.NewRecord(query.Question.Name, 100, dns.A{}),
	}
	b, err := dns.NewResponse(query, answers).Marshal()
	require.Error(t, err)
	assert.Nil(t, b)
}

func TestNewResponse_CopiesAnswers(t *testing.T) {
	query := runtimex.PanicOnError1(dns.ParseQuery(samplePacket))
	answers := []dns.ResourceRecord{
		dns.NewRecord(query.Question.Name, 100, dns.A{Addr: netip.MustParseAddr("127.0.0.1")}),
	}
	resp := dns.NewResponse(query, answers)
	answers[0].TTL = 1
	assert.Equal(t, uint32(100), resp.Answers[0].TTL)
}

// The wire output must be readable by an independent decoder.
func TestResponse_UnpacksWithMiekgDNS(t *testing.T) {
	query := runtimex.PanicOnError1(dns.ParseQuery(samplePacket))
	query.Question = dns.NewQuestion("alias.example.com", dns.TypeA, dns.ClassIN)
	answers := []dns.ResourceRecord{
		dns.NewRecord(dns.NewName("alias.example.com"), 3600, dns.NewCNAME("example.com")),
		dns.NewRecord(dns.NewName("example.com"), 100, dns.A{Addr: netip.MustParseAddr("127.0.0.1")}),
		dns.NewRecord(dns.NewName("example.com"), 100, dns.AAAA{Addr: netip.MustParseAddr("2001:db8::2:1")}),
	}
	b, err := dns.NewResponse(query, answers).Marshal()
	require.NoError(t, err)

	msg := new(mdns.Msg)
	require.NoError(t, msg.Unpack(b))

	assert.Equal(t, uint16(4), msg.Id)
	assert.True(t, msg.Response)
	assert.Equal(t, mdns.RcodeSuccess, msg.Rcode)
	require.Len(t, msg.Question, 1)
	assert.Equal(t, "alias.example.com.", msg.Question[0].Name)
	assert.Equal(t, mdns.TypeA, msg.Question[0].Qtype)

	require.Len(t, msg.Answer, 3)
	cname, ok := msg.Answer[0].(*mdns.CNAME)
	require.True(t, ok)
	assert.Equal(t, "example.com.", cname.Target)
	assert.Equal(t, uint32(3600), cname.Hdr.Ttl)

	a, ok := msg.Answer[1].(*mdns.A)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", a.A.String())
	assert.Equal(t, "example.com.", a.Hdr.Name)
	assert.Equal(t, uint32(100), a.Hdr.Ttl)

	aaaa, ok := msg.Answer[2].(*mdns.AAAA)
	require.True(t, ok)
	assert.Equal(t, "2001:db8::2:1", aaaa.AAAA.String())
}

// Queries built by another implementation must parse.
func TestParseQuery_FromMiekgDNS(t *testing.T) {
	q := new(mdns.Msg)
	q.SetQuestion("WWW.Example.org.", mdns.TypeAAAA)
	q.Id = 0xBEEF
	raw := runtimex.PanicOnError1(q.Pack())

	m, err := dns.ParseQuery(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), m.Header.ID)
	assert.True(t, m.Header.RecursionDesired())
	assert.Equal(t, "WWW.Example.org", m.Question.Name.String())
	assert.Equal(t, dns.TypeAAAA, m.Question.Type)
	assert.Equal(t, dns.ClassIN, m.Question.Class)
}
