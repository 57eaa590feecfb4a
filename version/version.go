package version

// Version is the Major.Minor.Patch tag from git, set at link time with
// -ldflags "-X github.com/jake-scott/netilion-client/version.Version=..."
var Version string = "dev"

// UserAgent identifies this client to the Netilion API
func UserAgent() string {
	return "netilion-client/" + Version
}
