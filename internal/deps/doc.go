// Package deps installs contract libraries into the project lib
// directory. Installs are shallow git clones pinned to semver tags,
// written atomically through a .tmp directory, with remappings.txt and
// the manifest dependency list kept in sync.
package deps
