package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ije/gox/term"
)

const fixHelpMessage = "\033[30mWrite the exports field for the builds of a package.\033[0m" + `

Usage: preconstruct fix [dir] [options]

Arguments:
  dir           The package directory, default is the current directory

Options:
  --dry-run     Print the updated package.json instead of writing it
  --help, -h    Show help message
`

// Fix updates `exports["."]` of package.json to match the builds.
func Fix() {
	dryRun := flag.Bool("dry-run", false, "Print the updated package.json instead of writing it")
	args, help := parseCommandFlags()
	if help {
		fmt.Print(fixHelpMessage)
		return
	}

	p, err := loadProject(firstArg(args))
	if err == nil {
		err = p.setupLogger(*dryRun)
	}
	if err == nil {
		_, err = fix(os.Stdout, p, *dryRun)
	}
	if err != nil {
		printError(os.Stderr, err)
		exit(1)
	}
}

func fix(w io.Writer, p *project, dryRun bool) (changed bool, err error) {
	plan, err := p.plan()
	if err != nil {
		return
	}
	tree, err := p.exports(plan)
	if err != nil {
		return
	}
	upToDate, err := p.exportsUpToDate(tree)
	if err != nil {
		return
	}
	if upToDate {
		if !dryRun {
			fmt.Fprintln(w, term.Dim("The exports field of "+p.name()+" is already up to date."))
		}
		return false, nil
	}

	p.pkg.SetExport(".", tree)
	if dryRun {
		data, err := p.pkg.Encode()
		if err != nil {
			return false, err
		}
		_, err = w.Write(data)
		return true, err
	}
	if err = p.pkg.WriteFile(p.pkgFile); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", p.pkgFile, err)
	}
	log.Infof("updated the exports field of %s (%d builds)", p.name(), plan.Builds.Len())
	fmt.Fprintln(w, term.Green("✔"), "Updated the exports field of", p.name())
	return true, nil
}
