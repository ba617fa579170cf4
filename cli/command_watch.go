package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esm-dev/preconstruct/internal/conditions"
	"github.com/esm-dev/preconstruct/internal/npm"
	"github.com/esm-dev/preconstruct/internal/plancache"
	"github.com/ije/gox/term"
)

const watchHelpMessage = "\033[30mRe-plan the builds of a package whenever package.json changes.\033[0m" + `

Usage: preconstruct watch [dir] [options]

Arguments:
  dir           The package directory, default is the current directory

Options:
  --fix         Update the exports field after each change
  --help, -h    Show help message

The polling interval is set by "watchInterval" in preconstruct.json.
`

// Watch polls package.json and prints the plan on every change.
func Watch() {
	autoFix := flag.Bool("fix", false, "Update the exports field after each change")
	args, help := parseCommandFlags()
	if help {
		fmt.Print(watchHelpMessage)
		return
	}

	p, err := loadProject(firstArg(args))
	if err == nil {
		err = p.setupLogger(false)
	}
	if err != nil {
		printError(os.Stderr, err)
		exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf(term.Dim("Watching %s for changes...\n"), p.pkgFile)
	if err := watch(ctx, os.Stdout, p, *autoFix); err != nil {
		printError(os.Stderr, err)
		exit(1)
	}
}

// watcher re-plans the package when the mtime of package.json changes.
type watcher struct {
	project *project
	cache   *plancache.Cache
	autoFix bool
	mtime   int64
	plan    *conditions.Plan
	// the last reported error, printed once until the next successful check
	lastErr string
}

func newWatcher(p *project, autoFix bool) (*watcher, error) {
	cache, err := plancache.New(p.config.CacheSize, p.planOptions()...)
	if err != nil {
		return nil, err
	}
	return &watcher{project: p, cache: cache, autoFix: autoFix}, nil
}

// check re-reads package.json if it was modified since the last check.
func (w *watcher) check() (changed bool, err error) {
	fi, err := os.Lstat(w.project.pkgFile)
	if err != nil {
		if os.IsNotExist(err) {
			// re-read the file whenever it comes back
			w.mtime = 0
			err = fmt.Errorf("package.json was removed from %s", w.project.dir)
		}
		return false, err
	}
	mtime := fi.ModTime().UnixMilli()
	if mtime <= w.mtime {
		return false, nil
	}
	w.mtime = mtime

	pkg, err := npm.ReadPackageJSON(w.project.pkgFile)
	if err != nil {
		return true, err
	}
	w.project.pkg = pkg

	start := time.Now()
	plan, hit, err := w.cache.Plan(pkg.Imports)
	if err != nil {
		return true, fmt.Errorf("%s: %w", w.project.name(), err)
	}
	w.plan = plan
	log.Debugf("re-planned %s in %v (cache hit: %v)", w.project.name(), time.Since(start), hit)
	return true, nil
}

// poll runs a check and prints its outcome. An error repeated by checks that
// didn't read a new package.json is printed only once.
func (w *watcher) poll(out io.Writer) {
	changed, err := w.check()
	if err != nil {
		if msg := err.Error(); changed || msg != w.lastErr {
			w.lastErr = msg
			printError(out, err)
		}
		return
	}
	if !changed {
		return
	}
	w.lastErr = ""

	p := w.project
	fmt.Fprintf(out, "%s %s: %d conditions, %d builds\n", term.Green("✔"), p.name(), len(w.plan.Conditions), w.plan.Builds.Len())
	if w.autoFix {
		if fixed, err := fix(out, p, false); err != nil {
			printError(out, err)
		} else if fixed {
			// our own write must not trigger another round
			if fi, err := os.Lstat(p.pkgFile); err == nil {
				w.mtime = fi.ModTime().UnixMilli()
			}
		}
	}
}

func watch(ctx context.Context, out io.Writer, p *project, autoFix bool) error {
	w, err := newWatcher(p, autoFix)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		w.poll(out)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
