// Package index serves the files under a root directory and renders an
// HTML listing for directories.
//
// Paths that resolve outside the root, through ".." or a symbolic link,
// are answered with 404, as are entries matching one of the exclusion
// globs. Globs use doublestar syntax and are matched against the path
// relative to the root, for example ".git/**" or "**/*.key".
package index
