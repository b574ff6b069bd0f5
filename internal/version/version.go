// Package version holds the build version. Release builds set it with
//
//	-ldflags "-X github.com/bnema/session-guard/internal/version.Version=v1.0.0"
package version

var Version = "dev"
