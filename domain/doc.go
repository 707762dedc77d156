// Package domain contains the core data model for rclib.
//
// The domain carries no execution machinery: it never touches the network
// or the filesystem. The execution packages (assemble, httpexec, scenario,
// harness) map into/from these types.
package domain
