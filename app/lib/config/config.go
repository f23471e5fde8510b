package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPort      = 8080
	DefaultMaxOutput = 16 << 20
)

var ErrHelp = flag.ErrHelp

type Config struct {
	DocRoot      string
	CgiDir       string
	BindAddress  string
	Port         int
	LogFile      string
	Debug        bool
	CgiMaxOutput int64
	CgiTimeout   time.Duration
}

// Parse reads command-line arguments (without the program name). Usage and
// flag errors are written to stderr.
func Parse(args []string, stderr io.Writer) (Config, error) {
	conf := Config{}

	fs := flag.NewFlagSet("sws", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&conf.CgiDir, "c", "", "Allow execution of CGIs from the given directory.")
	fs.BoolVar(&conf.Debug, "d", false, "Enter debugging mode.")
	fs.StringVar(&conf.BindAddress, "i", "", "Bind to the given IPv4 or IPv6 address (default: all).")
	fs.StringVar(&conf.LogFile, "l", "", "Log all requests to the given file.")
	fs.IntVar(&conf.Port, "p", DefaultPort, "Listen on the given port.")
	fs.Int64Var(&conf.CgiMaxOutput, "cgi-max-output", DefaultMaxOutput, "Maximum bytes of CGI output to buffer.")
	fs.DurationVar(&conf.CgiTimeout, "cgi-timeout", 0, "Kill CGI scripts running longer than this (0 disables).")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: sws [-dh] [-c dir] [-i address] [-l file] [-p port] dir")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return Config{}, errors.New("expected exactly one document root argument")
	}
	conf.DocRoot = fs.Arg(0)

	return conf, nil
}

func (c Config) Validate() error {
	if err := requireDir("document root", c.DocRoot); err != nil {
		return err
	}

	if c.CgiDir != "" {
		if err := requireDir("cgi directory", c.CgiDir); err != nil {
			return err
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.BindAddress != "" {
		if _, err := netip.ParseAddr(c.BindAddress); err != nil {
			return fmt.Errorf("invalid bind address %q: %w", c.BindAddress, err)
		}
	}

	if c.CgiMaxOutput <= 0 {
		return fmt.Errorf("invalid cgi output limit %d", c.CgiMaxOutput)
	}

	if c.CgiTimeout < 0 {
		return fmt.Errorf("invalid cgi timeout %s", c.CgiTimeout)
	}

	return nil
}

// Address is the listen address; an empty bind address means all interfaces.
func (c Config) Address() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

func requireDir(what string, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %s is not a directory", what, path)
	}
	return nil
}
