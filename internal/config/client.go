package config

import (
	"os"
	"path/filepath"
	"time"
)

// Client holds the settings of the caltrack command line client. The client
// holds no signing key; session tokens are issued by the store.
type Client struct {
	APIURL    string
	StatePath string
	Timeout   time.Duration
	Lang      string
}

// LoadClient reads the client settings from the environment.
func LoadClient() Client {
	lang := getEnv("CALTRACK_LANG", "en")
	if lang != "en" && lang != "pl" {
		lang = "en"
	}

	return Client{
		APIURL:    getEnv("CALTRACK_API_URL", "http://localhost:3000"),
		StatePath: getEnv("CALTRACK_STATE_PATH", defaultStatePath()),
		Timeout:   getDuration("CALTRACK_TIMEOUT", 15*time.Second),
		Lang:      lang,
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "caltrack-state.db"
	}
	return filepath.Join(dir, "caltrack", "state.db")
}
