package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/treemana/dnsock/log"
	"github.com/treemana/dnsock/message"
	"github.com/treemana/dnsock/resolver"
	"github.com/treemana/dnsock/socket"
	"github.com/treemana/dnsock/sockopt"
	"github.com/treemana/dnsock/util"
)

// Option is the content of the config file. Flags given on the command line
// override it.
type Option struct {
	Log struct {
		File    string `json:"file"`
		STDOUT  bool   `json:"stdout"`
		Verbose bool   `json:"verbose"`
	} `json:"log"`

	// local address to bind, empty means the unspecified address
	Bind string `json:"bind"`

	// servers to query, host:port; with more than one the fastest is used
	Servers []string `json:"servers"`

	TimeoutMS int    `json:"timeout_ms"`
	Attempts  int    `json:"attempts"`
	TTL       int    `json:"ttl"`      // 0 keeps the OS default
	UDPSize   uint16 `json:"udp_size"` // EDNS0 payload size
	Buffer    int    `json:"buffer"`   // kernel socket buffers in bytes, 0 keeps the OS default
}

var (
	option     Option
	configFile string
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		fo    Option // values given as flags
		qtype string
	)

	cmd := &cobra.Command{
		Use:           "dnsock [flags] name",
		Short:         "Send a DNS query over UDP and print the answer",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadOption(configFile, &option); err != nil {
				return report(cmd, err)
			}
			mergeFlags(cmd.Flags(), &option, &fo)

			t, err := queryType(qtype)
			if err != nil {
				return report(cmd, err)
			}

			if err = initLog(); err != nil {
				return report(cmd, err)
			}
			defer func() { _ = log.Logger.Sync() }()

			return report(cmd, run(cmd, args[0], t))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "JSON config file")
	flags.StringSliceVarP(&fo.Servers, "server", "s", []string{"127.0.0.1:53"}, "server host:port, repeatable")
	flags.StringVarP(&qtype, "type", "t", "A", "query type")
	flags.StringVarP(&fo.Bind, "bind", "b", "", "local address host:port")
	flags.IntVar(&fo.TimeoutMS, "timeout", 2000, "per attempt timeout in milliseconds")
	flags.IntVar(&fo.Attempts, "attempts", 3, "attempts per server")
	flags.IntVar(&fo.TTL, "ttl", 0, "IP TTL / hop limit of outgoing queries")
	flags.Uint16Var(&fo.UDPSize, "udp-size", dns.DefaultMsgSize, "EDNS0 UDP payload size, 0 disables EDNS0")
	flags.IntVar(&fo.Buffer, "buffer", 0, "kernel receive and send buffer size in bytes")
	flags.BoolVarP(&fo.Log.Verbose, "verbose", "v", false, "debug logging to stdout")

	return cmd
}

// mergeFlags fills o from the flag values f: a flag given on the command
// line always wins, a flag default only fills what the config left empty.
func mergeFlags(flags *pflag.FlagSet, o, f *Option) {
	if flags.Changed("server") || len(o.Servers) == 0 {
		o.Servers = f.Servers
	}
	if flags.Changed("bind") || len(o.Bind) == 0 {
		o.Bind = f.Bind
	}
	if flags.Changed("timeout") || o.TimeoutMS <= 0 {
		o.TimeoutMS = f.TimeoutMS
	}
	if flags.Changed("attempts") || o.Attempts <= 0 {
		o.Attempts = f.Attempts
	}
	if flags.Changed("ttl") || o.TTL <= 0 {
		o.TTL = f.TTL
	}
	if flags.Changed("udp-size") || o.UDPSize == 0 {
		o.UDPSize = f.UDPSize
	}
	if flags.Changed("buffer") || o.Buffer <= 0 {
		o.Buffer = f.Buffer
	}
	if f.Log.Verbose {
		o.Log.Verbose = true
		o.Log.STDOUT = true
	}
}

func run(cmd *cobra.Command, name string, qtype uint16) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sock, err := bind()
	if err != nil {
		return err
	}
	defer func() { _ = sock.Close() }()

	if option.TTL > 0 {
		if err = sockopt.SetTTL(sock.Get(), option.TTL); err != nil {
			return fmt.Errorf("set ttl error=[%+v]", err)
		}
	}

	if option.Buffer > 0 {
		if err = sockopt.SetBuffers(sock.Get(), option.Buffer, option.Buffer); err != nil {
			return fmt.Errorf("set buffers error=[%+v]", err)
		}
	}

	var servers []*net.UDPAddr
	for _, s := range option.Servers {
		addrs, err := util.ResolveUDPAddrs(ctx, s)
		if err != nil {
			return fmt.Errorf("server %s: %w", s, err)
		}
		servers = append(servers, addrs...)
	}

	if len(servers) == 0 {
		return errors.New("no server to query")
	}

	client := resolver.New(sock, resolver.Config{
		Timeout:  time.Duration(option.TimeoutMS) * time.Millisecond,
		Attempts: option.Attempts,
	})

	q := message.NewQuery(name, qtype)
	if option.UDPSize > 0 {
		q.SetUDPSize(option.UDPSize)
	}

	server := servers[0]
	if len(servers) > 1 {
		if server, _, err = client.Fastest(ctx, q, servers); err != nil {
			return err
		}
	}

	resp, err := client.Exchange(ctx, q, server)
	if resp != nil {
		printResponse(cmd, server, resp)
	}
	return err
}

func bind() (*socket.Socket, error) {
	if len(option.Bind) == 0 {
		return socket.New()
	}
	return socket.Bind(option.Bind)
}

func printResponse(cmd *cobra.Command, server *net.UDPAddr, resp *message.Message) {
	m := resp.Msg()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, ";; server %s, id %d, %s, %d answers\n", server, m.Id, dns.RcodeToString[m.Rcode], len(m.Answer))
	for _, rr := range m.Answer {
		fmt.Fprintln(out, rr.String())
	}
}

// report prints err the way a user wants to read it and hands it back to
// cobra for the exit status.
func report(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if socket.IsTimeout(err) {
		cmd.PrintErrln("dnsock: timeout:", err)
	} else {
		cmd.PrintErrln("dnsock:", err)
	}
	return err
}

func loadOption(file string, o *Option) error {
	if len(file) == 0 {
		return nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(raw, o); err != nil {
		return fmt.Errorf("config %s: %w", file, err)
	}

	return nil
}

func queryType(s string) (uint16, error) {
	if t, ok := dns.StringToType[strings.ToUpper(s)]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown query type %q", s)
}

func initLog() error {
	if !option.Log.STDOUT && len(option.Log.File) == 0 {
		// the library default stays silent
		return nil
	}

	lc := log.Config{
		File:       option.Log.File,
		STDOUT:     option.Log.STDOUT,
		MaxAge:     2,
		MaxSize:    10,
		MaxBackups: 100,
	}

	if option.Log.Verbose {
		lc.Level = -1
	}

	if err := log.Init(lc); err != nil {
		return fmt.Errorf("log init error=[%+v]", err)
	}

	return nil
}
