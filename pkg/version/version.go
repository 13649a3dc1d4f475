//go:build release
// +build release

package version

const Version = "v0.2.1-4f81c2ea"

const VersionGitRef = "4f81c2ea"
