package main

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treemana/dnsock/message"
	"github.com/treemana/dnsock/socket"
	"github.com/treemana/dnsock/udp"
)

func TestQueryType(t *testing.T) {
	tests := []struct {
		name    string
		want    uint16
		wantErr bool
	}{
		{name: "A", want: dns.TypeA},
		{name: "aaaa", want: dns.TypeAAAA},
		{name: "Mx", want: dns.TypeMX},
		{name: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := queryType(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadOption(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "dnsock.json")
	require.NoError(t, os.WriteFile(good, []byte(`{
		"log": {"stdout": true},
		"servers": ["192.0.2.53:53", "192.0.2.54:53"],
		"timeout_ms": 500,
		"attempts": 1,
		"ttl": 32,
		"buffer": 131072
	}`), 0o600))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"servers": "not a list"}`), 0o600))

	var o Option
	require.NoError(t, loadOption(good, &o))
	assert.True(t, o.Log.STDOUT)
	assert.Equal(t, []string{"192.0.2.53:53", "192.0.2.54:53"}, o.Servers)
	assert.Equal(t, 500, o.TimeoutMS)
	assert.Equal(t, 1, o.Attempts)
	assert.Equal(t, 32, o.TTL)
	assert.Equal(t, 131072, o.Buffer)

	assert.Error(t, loadOption(bad, &Option{}))
	assert.Error(t, loadOption(filepath.Join(dir, "missing.json"), &Option{}))
	assert.NoError(t, loadOption("", &Option{}))
}

func TestMergeFlags(t *testing.T) {
	cmd := newCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--attempts", "5", "--udp-size", "0"}))

	f := Option{
		Servers:   []string{"127.0.0.1:53"},
		TimeoutMS: 2000,
		Attempts:  5,
		UDPSize:   0,
	}
	o := Option{
		Servers:   []string{"192.0.2.53:53"},
		TimeoutMS: 500,
		Attempts:  1,
		UDPSize:   1232,
	}
	mergeFlags(cmd.Flags(), &o, &f)

	assert.Equal(t, []string{"192.0.2.53:53"}, o.Servers, "config wins over a flag default")
	assert.Equal(t, 500, o.TimeoutMS)
	assert.Equal(t, 5, o.Attempts, "explicit flag wins over config")
	assert.Zero(t, o.UDPSize)
	assert.False(t, o.Log.STDOUT)

	var empty Option
	mergeFlags(newCommand().Flags(), &empty, &f)
	assert.Equal(t, f.Servers, empty.Servers)
	assert.Equal(t, f.TimeoutMS, empty.TimeoutMS)
}

func TestCommand(t *testing.T) {
	srv, err := udp.New("127.0.0.1:0", func(_ uint64, q *message.Message, _ *net.UDPAddr) []*message.Message {
		rr, _ := dns.NewRR(q.Msg().Question[0].Name + " 300 IN A 192.0.2.80")
		return []*message.Message{message.NewReply(q, dns.RcodeSuccess, rr)}
	})
	require.NoError(t, err)
	srv.Start()
	defer srv.Stop()

	option = Option{}
	configFile = ""

	var out, errOut bytes.Buffer
	cmd := newCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"--server", "127.0.0.1:" + strconv.Itoa(srv.Addr().Port),
		"--bind", "127.0.0.1:0",
		"--timeout", "1000",
		"--ttl", "16",
		"--buffer", "65536",
		"example.com",
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "NOERROR")
	assert.Contains(t, out.String(), "192.0.2.80")
	assert.Empty(t, errOut.String())
}

func TestCommandTimeout(t *testing.T) {
	silent, err := socket.Bind("127.0.0.1:0")
	require.NoError(t, err)
	defer silent.Close()

	option = Option{}
	configFile = ""

	var errOut bytes.Buffer
	cmd := newCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"--server", silent.LocalAddr().String(),
		"--bind", "127.0.0.1:0",
		"--timeout", "30",
		"--attempts", "1",
		"example.com",
	})

	err = cmd.Execute()
	require.Error(t, err)
	assert.True(t, socket.IsTimeout(err))
	assert.Contains(t, errOut.String(), "dnsock: timeout:")
}
