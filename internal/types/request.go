package types

// Assist modes accepted on the wire. An unrecognized mode falls back to chat.
const (
	ModeChat     = "chat"
	ModeImageGen = "image-gen"
	ModeVideoGen = "video-gen"
	ModeSuggest  = "suggest"
	ModeExtract  = "extract"
)

// Supported response languages
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
)

// AssistRequest is the body of POST /api/assist.
type AssistRequest struct {
	Messages []ChatMessage `json:"messages"`
	Language string        `json:"language,omitempty"`
	Mode     string        `json:"mode,omitempty"`

	// TestMode runs a cheap connectivity probe against TestConfig instead of
	// the stored provider chain.
	TestMode   bool            `json:"testMode,omitempty"`
	TestConfig *ProviderConfig `json:"testConfig,omitempty"`

	// UserModel optionally overrides the first candidate model on the
	// built-in default provider.
	UserModel string `json:"userModel,omitempty"`
}

// ImageGenResponse is the JSON body for image-gen mode.
type ImageGenResponse struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// VideoGenResponse is the JSON body for video-gen mode.
type VideoGenResponse struct {
	Text     string `json:"text"`
	VideoURL string `json:"videoUrl"`
	Prompt   string `json:"prompt"`
}

// SuggestResponse is the JSON body for suggest mode.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// TestResponse is the JSON body for a connectivity probe.
type TestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
