package app

// Release builds stamp these through the linker, for example:
//
//	go build -ldflags "-X github.com/hyperifyio/ticketcapture/internal/app.BuildVersion=v1.2.0" ./cmd/ticketcapture
//
// `ticketcapture version` prints them; unstamped builds report a dev version.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)
