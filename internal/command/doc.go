// Package command runs per-package command pipelines. A pipeline has pre,
// main and post stages, each an ordered list of shell commands, Go
// callbacks or built-in operations, with templating, retries, stdout piping
// and dry-run substitution. It also implements the "already published"
// check that runs before a publish.
package command
