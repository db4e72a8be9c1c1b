package cfg

type Cfg struct {
	// Database configuration
	DBDriver string
	DBDSN    string

	// Application configuration
	SourcesDir         string
	Port               string
	APIAccessKey       string
	ScheduleHours      []int
	RunOnStart         bool
	MaxPostsPerRun     int
	EventRetentionDays int

	// Rewriter configuration
	Rewriter        string
	RewriterModel   string
	RewriterBaseURL string
	RewriterKeys    []string
	TargetLanguage  string

	// Publisher configuration
	Publisher           string
	FacebookPageID      string
	FacebookAccessToken string
	GraphAPIURL         string
	TelegramBotToken    string
	TelegramChatID      string

	// Application metadata
	UserAgent   string
	HTTPTimeout int // seconds
	Timezone    string
	LogFormat   string
	LogFile     string
	Debug       bool
	Version     string
}
