package npm

import (
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ije/gox/utils"
	"github.com/ije/gox/valid"
)

var (
	Naming = valid.Validator{valid.Range{'a', 'z'}, valid.Range{'A', 'Z'}, valid.Range{'0', '9'}, valid.Eq('_'), valid.Eq('.'), valid.Eq('-'), valid.Eq('+'), valid.Eq('$'), valid.Eq('!')}
)

// ValidatePackageName validates the package name.
// based on https://github.com/npm/validate-npm-package-name
func ValidatePackageName(pkgName string) bool {
	if l := len(pkgName); l == 0 || l > 214 {
		return false
	}
	if strings.HasPrefix(pkgName, "@") {
		scope, name := utils.SplitByFirstByte(pkgName, '/')
		return Naming.Match(scope[1:]) && Naming.Match(name)
	}
	return Naming.Match(pkgName)
}

// ValidatePackageVersion checks the "version" field of a package.json,
// which must be a strict semver version.
func ValidatePackageVersion(version string) error {
	if version == "" {
		return errors.New("missing version")
	}
	if strings.HasPrefix(version, "v") || strings.HasPrefix(version, "=") {
		return errors.New("version must not have a prefix")
	}
	if _, err := semver.StrictNewVersion(version); err != nil {
		return err
	}
	return nil
}

// PackageBaseName returns the file-name-safe base of the package name.
// e.g. "@scope/pkg" -> "scope-pkg"
func PackageBaseName(pkgName string) string {
	if strings.HasPrefix(pkgName, "@") {
		pkgName = strings.Replace(pkgName[1:], "/", "-", 1)
	}
	return pkgName
}
