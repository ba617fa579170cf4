package cli

import (
	"fmt"
	"os"

	"github.com/ije/gox/term"
)

const validateHelpMessage = "\033[30mCheck the package.json of a package.\033[0m" + `

Usage: preconstruct validate [dir] [options]

Arguments:
  dir           The package directory, default is the current directory

Options:
  --help, -h    Show help message

The name, the version and the imports field of package.json are checked, and
the "." entry of the exports field must match the builds of the imports field.
`

// Validate checks the package and exits with code 1 if there is any problem.
func Validate() {
	args, help := parseCommandFlags()
	if help {
		fmt.Print(validateHelpMessage)
		return
	}

	p, err := loadProject(firstArg(args))
	if err == nil {
		err = p.setupLogger(false)
	}
	if err == nil {
		err = p.validate()
	}
	if err != nil {
		printError(os.Stderr, err)
		exit(1)
	}
	fmt.Println(term.Green("✔"), "Package", p.name(), "is valid")
}
