package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wudi/pdftask/request"
)

const usage = `Usage: pdftask [-config file] <command> [flags] <pdf>...

Commands:
  tasks      list the available tasks
  info       print page count, version and information entries
  serve      run the HTTP API
  %s
`

type options struct {
	command    string
	configPath string
	inputs     []string
	password   string
	out        string
	remote     bool
	jsonOut    bool
	verbose    bool
	request    request.Options
}

var errUsage = errors.New("usage")

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "pdftask: %v\n", err)
		}
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pdftask: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	global := flag.NewFlagSet("pdftask", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() {
		fmt.Fprintf(stderr, usage, strings.Join(request.Tasks(), "\n  "))
		global.PrintDefaults()
	}
	global.StringVar(&opts.configPath, "config", "", "INI configuration file")
	if err := global.Parse(args); err != nil {
		return opts, errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return opts, errUsage
	}
	opts.command = global.Arg(0)

	fs := flag.NewFlagSet(opts.command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	switch opts.command {
	case "tasks", "serve":
	case "info":
		fs.StringVar(&opts.password, "password", "", "Password to open encrypted PDFs")
	default:
		if !isTask(opts.command) {
			global.Usage()
			return opts, fmt.Errorf("unknown command %q", opts.command)
		}
		taskFlags(fs, &opts)
	}
	if err := fs.Parse(global.Args()[1:]); err != nil {
		return opts, errUsage
	}
	opts.inputs = fs.Args()

	switch opts.command {
	case "tasks", "serve":
		if len(opts.inputs) != 0 {
			return opts, fmt.Errorf("%s takes no arguments", opts.command)
		}
	default:
		if len(opts.inputs) == 0 {
			return opts, fmt.Errorf("%s: missing pdf path", opts.command)
		}
		if opts.command != "info" && opts.out == "" && !opts.remote {
			return opts, fmt.Errorf("%s: -o is required", opts.command)
		}
	}
	return opts, nil
}

func taskFlags(fs *flag.FlagSet, opts *options) {
	r := &opts.request
	fs.StringVar(&opts.out, "o", "", "Output file, directory or .zip archive")
	fs.BoolVar(&opts.remote, "remote", false, "Store results in the configured object storage")
	fs.StringVar(&opts.password, "password", "", "Password to open encrypted PDFs")
	fs.BoolVar(&opts.verbose, "v", false, "Report progress on stderr")

	fs.StringVar(&r.Pages, "pages", "", "Page ranges, e.g. 1,3-5,8-")
	fs.StringVar(&r.Set, "set", "", "Predefined page set: all, odd, even")
	fs.StringVar(&r.Script, "script", "", "JavaScript page selector, e.g. 'page.number % 2 == 0'")
	fs.BoolVar(&r.BlankPageBetween, "blank", false, "Insert a blank page between merged inputs")
	fs.IntVar(&r.Step, "step", 0, "Pages per document for split-every")
	fs.StringVar(&r.SplitAfter, "after", "", "Comma separated pages to split after")
	fs.IntVar(&r.Rotation, "rotation", 90, "Clockwise rotation in degrees")
	fs.StringVar(&r.Algorithm, "algorithm", "", "Encryption algorithm: rc4-40, rc4-128, aes-128, aes-256")
	fs.StringVar(&r.UserPassword, "user-password", "", "Password required to open the output")
	fs.StringVar(&r.OwnerPassword, "owner-password", "", "Owner password of the output")
	fs.StringVar(&r.Permissions, "permissions", "", "Comma separated permissions granted to users")
	fs.StringVar(&r.Title, "title", "", "Document title")
	fs.StringVar(&r.Author, "author", "", "Document author")
	fs.StringVar(&r.Subject, "subject", "", "Document subject")
	fs.StringVar(&r.Keywords, "keywords", "", "Document keywords")
	fs.StringVar(&r.Version, "version", "", "Output PDF version, e.g. 1.6")
	fs.BoolVar(&r.Compress, "compress", false, "Write object and xref streams")
	fs.BoolVar(&r.Overwrite, "overwrite", false, "Replace existing outputs")
	fs.StringVar(&r.Prefix, "prefix", "", "Output name prefix, e.g. [BASENAME]_[FILENUMBER]")
}

func isTask(name string) bool {
	for _, t := range request.Tasks() {
		if t == name {
			return true
		}
	}
	return false
}
