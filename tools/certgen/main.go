// Package main writes a development CA and a server certificate for the
// wardrobe backend into a directory (./certs by default).
//
// Start the server with -tls-cert certs/server.crt -tls-key certs/server.key
// and point the client at it with --ca certs/ca.crt.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/wardrobix/internal/certgen"
)

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated server host names or IPs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var list []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			list = append(list, h)
		}
	}
	if err := certgen.WriteDevPKI(*dir, list); err != nil {
		return err
	}
	fmt.Fprintf(out, "Certificates generated into %s\n", *dir)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
