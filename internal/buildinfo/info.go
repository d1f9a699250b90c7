package buildinfo

// Set with -ldflags at build time.
var (
	Version    = "v2.0.0"
	CommitHash = "unknown"
)

const ServiceName = "noona-vault"

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      "https://github.com/The-Noona-Project/Noona-Vault",
		Service:    ServiceName,
		Version:    Version,
		CommitHash: CommitHash,
	}
}

// UserAgent is sent by the Go client.
func UserAgent() string {
	return "NoonaVault/" + Version
}
