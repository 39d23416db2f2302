package domain

// Config mirrors ~/.kael/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Endpoints           EndpointSettings   `yaml:"endpoints"`
	Remote              RemoteSettings     `yaml:"remote"`
	Transcript          TranscriptSettings `yaml:"transcript"`
	TimeoutSeconds      int                `yaml:"timeout"`
}

// EndpointSettings holds per-provider endpoint overrides. Empty fields fall
// back to the adapter defaults; environment variables override both.
type EndpointSettings struct {
	Ollama            string `yaml:"ollama"`
	Mistral           string `yaml:"mistral"`
	Gemini            string `yaml:"gemini"`
	Copilot           string `yaml:"copilot"`
	CopilotAPIVersion string `yaml:"copilot_api_version"`
	Office365         string `yaml:"office365"`
	GoogleOne         string `yaml:"googleone"`
}

// RemoteSettings configures the remote credential document store.
type RemoteSettings struct {
	// FirebaseProject is the Firestore project id holding users/{uid}/api_keys.
	FirebaseProject string `yaml:"firebase_project"`
	// BaseURL overrides the Firestore REST endpoint (tests, emulators).
	BaseURL string `yaml:"base_url"`
}

// TranscriptSettings configures local chat persistence.
type TranscriptSettings struct {
	DatabasePath string `yaml:"database_path"`
}
