//go:build !release
// +build !release

package version

const Version = "v0.2.1-dev"

const VersionGitRef = "HEAD"
