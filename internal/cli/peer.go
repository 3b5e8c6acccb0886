package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// PeerOptions configures the headless participant.
type PeerOptions struct {
	URL       string `validate:"required,url"`
	Namespace string
	Insecure  bool
	Timeout   time.Duration `validate:"gt=0"`

	LoadPath    string
	Clear       bool
	CreateNodes []string
	Stay        time.Duration `validate:"gte=0"`
	SavePath    string
	DotPath     string

	LogFormat string
	LogLevel  string
}

// stringList is a flag that may be repeated.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParsePeer processes the participant's command-line arguments the same way
// Parse does for the relay.
func ParsePeer(args []string, output io.Writer) (*PeerOptions, bool, error) {
	flagSet := flag.NewFlagSet("flowsync-peer", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
flowsync-peer - A headless participant of a flowsync diagram.

It connects to a relay, mirrors the diagram, performs the requested actions
in order (load, clear, create-node) and writes the resulting diagram to the
requested files before exiting.

Usage:
  flowsync-peer [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	opts := &PeerOptions{}
	var createNodes stringList
	flagSet.StringVar(&opts.URL, "url", "http://localhost:"+DefaultPort, "Relay URL.")
	flagSet.StringVar(&opts.Namespace, "namespace", "/", "Socket.io namespace.")
	flagSet.BoolVar(&opts.Insecure, "insecure", false, "Skip TLS certificate verification.")
	flagSet.DurationVar(&opts.Timeout, "timeout", 15*time.Second, "How long to wait for the connection and the initial diagram.")
	flagSet.StringVar(&opts.LoadPath, "load", "", "Replace everyone's diagram with this JSON document.")
	flagSet.BoolVar(&opts.Clear, "clear", false, "Clear everyone's diagram.")
	flagSet.Var(&createNodes, "create-node", "Create a node with this text. May be repeated.")
	flagSet.DurationVar(&opts.Stay, "stay", time.Second, "How long to stay connected after the actions.")
	flagSet.StringVar(&opts.SavePath, "save", "", "Write the diagram as JSON to this file on exit.")
	flagSet.StringVar(&opts.DotPath, "dot", "", "Write the diagram as Graphviz DOT to this file on exit.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument: %s", flagSet.Arg(0))}
	}

	var err error
	opts.LogFormat, opts.LogLevel, err = validateLogFlags(*logFormatFlag, *logLevelFlag)
	if err != nil {
		return nil, false, err
	}
	opts.CreateNodes = createNodes

	if err := validate.Struct(opts); err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid options: %s", err)}
	}
	return opts, false, nil
}
