package version

// Version is the version of the tdoc CLI. It is overridden at build time
// with -ldflags "-X github.com/andxor/tdoc/internal/version.Version=...".
var Version = "0.1.0-dev"
