package version

// Current is the version of the yaml4rst binary, set at build time with
// -ldflags "-X github.com/virtualboard/yaml4rst/internal/version.Current=v1.2.3".
var Current = "dev"
