// Package release runs the workflows of a workspace: status, version,
// publish (or any named workflow) and preview. It wires the assembler,
// cascade resolver, version applier, changelog writer and command engine
// together.
package release
