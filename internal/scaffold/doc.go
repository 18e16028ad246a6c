// Package scaffold renders embedded project and file templates. The
// "project" set produces a complete new project directory; the
// "contract", "script", and "test" sets add single files to an existing
// project. Templates use text/template with filenames carrying a
// __Name__ placeholder for the derived contract identifier.
package scaffold

import "embed"

//go:embed all:templates
var scaffoldFS embed.FS
