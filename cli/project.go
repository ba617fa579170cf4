package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/esm-dev/preconstruct/internal/conditions"
	"github.com/esm-dev/preconstruct/internal/config"
	"github.com/esm-dev/preconstruct/internal/npm"
	logx "github.com/ije/gox/log"
)

// project is a package directory with its package.json and config.
type project struct {
	dir     string
	pkgFile string
	pkg     *npm.PackageJSON
	config  *config.Config
}

func loadProject(dir string) (p *project, err error) {
	if dir == "" {
		dir, err = os.Getwd()
	} else {
		dir, err = filepath.Abs(dir)
	}
	if err != nil {
		return
	}

	pkgFile := filepath.Join(dir, "package.json")
	pkg, err := npm.ReadPackageJSON(pkgFile)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("package.json not found in %s", dir)
		}
		return
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return
	}

	return &project{
		dir:     dir,
		pkgFile: pkgFile,
		pkg:     pkg,
		config:  cfg,
	}, nil
}

// setupLogger switches to a file logger if the config has a log directory.
func (p *project) setupLogger(quiet bool) error {
	if p.config.LogDir != "" {
		if err := os.MkdirAll(p.config.LogDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logger, err := logx.New(fmt.Sprintf("file:%s?buffer=32k", filepath.Join(p.config.LogDir, "preconstruct.log")))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = logger
	}
	log.SetLevelByName(p.config.LogLevel)
	if quiet {
		log.SetQuite(true)
	}
	return nil
}

func (p *project) name() string {
	if p.pkg.Name != "" {
		return p.pkg.Name
	}
	return filepath.Base(p.dir)
}

func (p *project) planOptions() []conditions.Option {
	return []conditions.Option{conditions.WithMaxConditions(p.config.MaxConditions)}
}

// plan computes the builds of the package, errors are scoped with the package name.
func (p *project) plan() (*conditions.Plan, error) {
	start := time.Now()
	plan, err := conditions.NewPlan(p.pkg.Imports, p.planOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name(), err)
	}
	log.Debugf("plan %s: %d conditions, %d builds in %v", p.name(), len(plan.Conditions), plan.Builds.Len(), time.Since(start))
	return plan, nil
}

// distFilename returns the output file of the build represented by the combination,
// e.g. "./dist/pkg.browser.development.js".
func (p *project) distFilename(c conditions.Combination) string {
	parts := make([]string, 0, len(c)+1)
	parts = append(parts, npm.PackageBaseName(p.name()))
	for _, condition := range c {
		parts = append(parts, toFilenamePart(condition))
	}
	return "./" + path.Join(p.config.DistDir, strings.Join(parts, ".")+".js")
}

func (p *project) exports(plan *conditions.Plan) (*conditions.ExportsTree[string], error) {
	tree, err := conditions.ExportsFor(plan, p.distFilename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name(), err)
	}
	return tree, nil
}

// exportsUpToDate returns true if `exports["."]` of package.json equals the tree.
func (p *project) exportsUpToDate(tree *conditions.ExportsTree[string]) (bool, error) {
	current, ok := p.pkg.Exports.Get(".")
	if !ok {
		return false, nil
	}
	a, err := json.Marshal(current)
	if err != nil {
		return false, err
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return false, err
	}
	return bytes.Equal(a, b), nil
}

// validate checks the package.json, reporting all problems at once.
func (p *project) validate() error {
	var errs []error
	if !npm.ValidatePackageName(p.pkg.Name) {
		errs = append(errs, fmt.Errorf("invalid package name %q", p.pkg.Name))
	}
	if err := npm.ValidatePackageVersion(p.pkg.Version); err != nil {
		errs = append(errs, fmt.Errorf("invalid version %q: %w", p.pkg.Version, err))
	}
	plan, err := p.plan()
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	tree, err := p.exports(plan)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if p.pkg.HasImports() {
		ok, err := p.exportsUpToDate(tree)
		if err != nil {
			errs = append(errs, err)
		} else if !ok {
			errs = append(errs, fmt.Errorf("%s: exports[\".\"] doesn't match the builds of the imports field, run `preconstruct fix`", p.name()))
		}
	}
	return errors.Join(errs...)
}

// toFilenamePart escapes every byte of the condition outside [A-Za-z0-9-]
// as `_xx`, so distinct conditions never share a file name.
func toFilenamePart(condition string) string {
	var b strings.Builder
	for i := 0; i < len(condition); i++ {
		c := condition[i]
		if c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}
