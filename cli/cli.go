package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/esm-dev/preconstruct/internal/conditions"
	logx "github.com/ije/gox/log"
	"github.com/ije/gox/term"
	xterm "golang.org/x/term"
)

const VERSION = "0.1.0"

const helpMessage = "\033[30mpreconstruct - Plan the builds of a package with conditional imports.\033[0m" + `

Usage: preconstruct [command] [options]

Commands:
  plan [dir]            Print the conditions and builds of the package
  validate [dir]        Check package.json and the exports field of the package
  fix [dir]             Write the exports field for the builds of the package
  watch [dir]           Re-plan the builds whenever package.json changes

Options:
  --version, -v         Show the version
  --help, -h            Display this help message
`

var log = &logx.Logger{}

func Run() {
	// disable colors when the output is piped
	if !xterm.IsTerminal(int(os.Stdout.Fd())) {
		os.Setenv("NO_COLOR", "1")
	}

	if len(os.Args) < 2 {
		fmt.Print(helpMessage)
		return
	}
	switch command := os.Args[1]; command {
	case "plan":
		Plan()
	case "validate":
		Validate()
	case "fix":
		Fix()
	case "watch":
		Watch()
	case "version":
		fmt.Println("preconstruct " + VERSION)
	default:
		for _, arg := range os.Args[1:] {
			if arg == "--version" {
				fmt.Println("preconstruct " + VERSION)
				return
			}
			if arg == "-v" {
				fmt.Println(VERSION)
				return
			}
		}
		fmt.Print(helpMessage)
	}
	log.FlushBuffer()
}

// parseCommandFlags parses the flags of the command, positional arguments
// and flags can be mixed. Flags with a value must use the `--flag=value` form.
func parseCommandFlags() (args []string, help bool) {
	h := flag.Bool("help", false, "Show help message")
	flag.BoolVar(h, "h", false, "Show help message")
	var flags []string
	for _, arg := range os.Args[2:] {
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
		} else {
			args = append(args, arg)
		}
	}
	flag.CommandLine.Parse(flags)
	return args, *h
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// exit flushes the logger and exits with the given code.
func exit(code int) {
	log.FlushBuffer()
	os.Exit(code)
}

func printError(w io.Writer, err error) {
	var internalErr *conditions.InternalError
	if errors.As(err, &internalErr) {
		fmt.Fprintln(w, term.Red("[internal error]"), err.Error())
		fmt.Fprintln(w, term.Dim("This is a bug in preconstruct, please report it."))
		return
	}
	// errors.Join separates the errors with newlines
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintln(w, term.Red("[error]"), line)
	}
}
