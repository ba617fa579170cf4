package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/esm-dev/preconstruct/internal/conditions"
	"github.com/ije/gox/term"
)

const planHelpMessage = "\033[30mPrint the conditions and builds of a package.\033[0m" + `

Usage: preconstruct plan [dir] [options]

Arguments:
  dir           The package directory, default is the current directory

Options:
  --json        Print the plan as JSON
  --help, -h    Show help message
`

// Plan prints the build plan of the package.
func Plan() {
	jsonOutput := flag.Bool("json", false, "Print the plan as JSON")
	args, help := parseCommandFlags()
	if help {
		fmt.Print(planHelpMessage)
		return
	}

	p, err := loadProject(firstArg(args))
	if err == nil {
		err = p.setupLogger(*jsonOutput)
	}
	if err == nil {
		err = printPlan(os.Stdout, p, *jsonOutput)
	}
	if err != nil {
		printError(os.Stderr, err)
		exit(1)
	}
}

type planOutput struct {
	Conditions []string                        `json:"conditions"`
	Order      []string                        `json:"order"`
	Builds     []*conditions.Build             `json:"builds"`
	Exports    *conditions.ExportsTree[string] `json:"exports"`
}

func printPlan(w io.Writer, p *project, jsonOutput bool) error {
	plan, err := p.plan()
	if err != nil {
		return err
	}
	tree, err := p.exports(plan)
	if err != nil {
		return err
	}

	if jsonOutput {
		conditionList := plan.Conditions
		if conditionList == nil {
			conditionList = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(planOutput{
			Conditions: conditionList,
			Order:      conditions.ConditionOrder(plan.Builds),
			Builds:     plan.Builds.List(),
			Exports:    tree,
		})
	}

	if len(plan.Conditions) == 0 {
		fmt.Fprintln(w, term.Dim("No conditions used by the imports field."))
	} else {
		fmt.Fprintln(w, "Conditions:", strings.Join(plan.Conditions, ", "))
	}
	fmt.Fprintf(w, "Builds (%d):\n", plan.Builds.Len())
	for _, build := range plan.Builds.List() {
		members := make([]string, len(build.Members))
		for i, m := range build.Members {
			members[i] = m.String()
		}
		fmt.Fprintf(w, "  %s %s\n", term.Green(p.distFilename(build.Representative)), term.Dim(strings.Join(members, " ")))
	}
	return nil
}
