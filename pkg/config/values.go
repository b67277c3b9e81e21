package config

import (
	"embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// output formats accepted by output_format.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Values holds scalar configuration values.
// fields ending in *Set track whether the field was explicitly set, so an explicit
// zero or false in a local config can override a non-zero global value.
type Values struct {
	Precision          int
	PrecisionSet       bool // tracks if precision was explicitly set
	OutputFormat       string
	WatchDebounceMs    int
	WatchDebounceMsSet bool // tracks if watch_debounce_ms was explicitly set
	LogFile            string

	NotifyChannels        []string
	NotifyOnError         bool
	NotifyOnErrorSet      bool // tracks if notify_on_error was explicitly set
	NotifyOnComplete      bool
	NotifyOnCompleteSet   bool // tracks if notify_on_complete was explicitly set
	NotifyOnDegenerate    bool
	NotifyOnDegenerateSet bool // tracks if notify_on_degenerate was explicitly set
	NotifyAlphaBelow      float64
	NotifyAlphaBelowSet   bool // tracks if notify_alpha_below was explicitly set
	NotifyTimeoutMs       int
	NotifyTimeoutMsSet    bool // tracks if notify_timeout_ms was explicitly set
	NotifyTelegramToken   string
	NotifyTelegramChat    string
	NotifySlackToken      string
	NotifySlackChannel    string
	NotifySMTPHost        string
	NotifySMTPPort        int
	NotifySMTPUsername    string
	NotifySMTPPassword    string
	NotifySMTPStartTLS    bool
	NotifySMTPStartTLSSet bool // tracks if notify_smtp_starttls was explicitly set
	NotifyEmailFrom       string
	NotifyEmailTo         []string
	NotifyWebhookURLs     []string
	NotifyCustomScript    string
}

// valuesLoader loads Values with embedded filesystem fallback.
type valuesLoader struct {
	embedFS embed.FS
}

// newValuesLoader creates a new valuesLoader with the given embedded filesystem.
func newValuesLoader(embedFS embed.FS) *valuesLoader {
	return &valuesLoader{embedFS: embedFS}
}

// Load loads values from config files with fallback chain: local → global → embedded.
// localConfigPath and globalConfigPath are full paths to config files (not directories).
func (vl *valuesLoader) Load(localConfigPath, globalConfigPath string) (Values, error) {
	embedded, err := vl.parseValuesFromEmbedded()
	if err != nil {
		return Values{}, fmt.Errorf("parse embedded defaults: %w", err)
	}

	global, err := vl.parseValuesFromFile(globalConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse global config: %w", err)
	}

	local, err := vl.parseValuesFromFile(localConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse local config: %w", err)
	}

	// merge: embedded → global → local (local wins)
	result := embedded
	result.mergeFrom(&global)
	result.mergeFrom(&local)

	return result, nil
}

// parseValuesFromFile reads a config file and parses it into Values.
// returns empty Values (not error) if the file doesn't exist or holds only comments.
func (vl *valuesLoader) parseValuesFromFile(path string) (Values, error) {
	if path == "" {
		return Values{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return Values{}, nil
		}
		return Values{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if strings.TrimSpace(stripComments(string(data))) == "" {
		return Values{}, nil
	}

	return vl.parseValuesFromBytes(data)
}

// parseValuesFromEmbedded parses values from the embedded defaults/config file.
func (vl *valuesLoader) parseValuesFromEmbedded() (Values, error) {
	data, err := vl.embedFS.ReadFile("defaults/config")
	if err != nil {
		return Values{}, fmt.Errorf("read embedded defaults: %w", err)
	}
	return vl.parseValuesFromBytes(data)
}

// parseValuesFromBytes parses configuration from a byte slice into Values.
func (vl *valuesLoader) parseValuesFromBytes(data []byte) (Values, error) {
	// ignoreInlineComment: true prevents # from being treated as inline comment marker
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Values{}, fmt.Errorf("parse config: %w", err)
	}

	var values Values
	section := cfg.Section("")

	if key, err := section.GetKey("precision"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Values{}, fmt.Errorf("invalid precision: %w", intErr)
		}
		if val < 0 || val > 15 {
			return Values{}, fmt.Errorf("invalid precision: must be in [0,15], got %d", val)
		}
		values.Precision = val
		values.PrecisionSet = true
	}
	if key, err := section.GetKey("output_format"); err == nil {
		val := strings.ToLower(strings.TrimSpace(key.String()))
		switch val {
		case "", FormatText, FormatMarkdown, FormatJSON:
			values.OutputFormat = val
		default:
			return Values{}, fmt.Errorf("invalid output_format: %q", val)
		}
	}
	if key, err := section.GetKey("watch_debounce_ms"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Values{}, fmt.Errorf("invalid watch_debounce_ms: %w", intErr)
		}
		if val < 0 {
			return Values{}, fmt.Errorf("invalid watch_debounce_ms: must be non-negative, got %d", val)
		}
		values.WatchDebounceMs = val
		values.WatchDebounceMsSet = true
	}
	if key, err := section.GetKey("log_file"); err == nil {
		values.LogFile = strings.TrimSpace(key.String())
	}

	if err := parseNotify(section, &values); err != nil {
		return Values{}, err
	}

	return values, nil
}

// parseNotify parses notify_* keys into values.
func parseNotify(section *ini.Section, values *Values) error {
	values.NotifyChannels = splitList(section, "notify_channels")
	values.NotifyEmailTo = splitList(section, "notify_email_to")
	values.NotifyWebhookURLs = splitList(section, "notify_webhook_urls")

	boolKeys := []struct {
		key   string
		field *bool
		set   *bool
	}{
		{"notify_on_error", &values.NotifyOnError, &values.NotifyOnErrorSet},
		{"notify_on_complete", &values.NotifyOnComplete, &values.NotifyOnCompleteSet},
		{"notify_smtp_starttls", &values.NotifySMTPStartTLS, &values.NotifySMTPStartTLSSet},
		{"notify_on_degenerate", &values.NotifyOnDegenerate, &values.NotifyOnDegenerateSet},
	}
	for _, bk := range boolKeys {
		key, err := section.GetKey(bk.key)
		if err != nil {
			continue
		}
		val, boolErr := key.Bool()
		if boolErr != nil {
			return fmt.Errorf("invalid %s: %w", bk.key, boolErr)
		}
		*bk.field = val
		*bk.set = true
	}

	if key, err := section.GetKey("notify_timeout_ms"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return fmt.Errorf("invalid notify_timeout_ms: %w", intErr)
		}
		if val < 0 {
			return fmt.Errorf("invalid notify_timeout_ms: must be non-negative, got %d", val)
		}
		values.NotifyTimeoutMs = val
		values.NotifyTimeoutMsSet = true
	}
	if key, err := section.GetKey("notify_alpha_below"); err == nil && strings.TrimSpace(key.String()) != "" {
		val, fErr := key.Float64()
		if fErr != nil {
			return fmt.Errorf("invalid notify_alpha_below: %w", fErr)
		}
		if math.IsNaN(val) || val > 1 {
			return fmt.Errorf("invalid notify_alpha_below: must be a number not above 1, got %v", val)
		}
		values.NotifyAlphaBelow = val
		values.NotifyAlphaBelowSet = true
	}
	if key, err := section.GetKey("notify_smtp_port"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return fmt.Errorf("invalid notify_smtp_port: %w", intErr)
		}
		values.NotifySMTPPort = val
	}

	stringKeys := []struct {
		key   string
		field *string
	}{
		{"notify_telegram_token", &values.NotifyTelegramToken},
		{"notify_telegram_chat", &values.NotifyTelegramChat},
		{"notify_slack_token", &values.NotifySlackToken},
		{"notify_slack_channel", &values.NotifySlackChannel},
		{"notify_smtp_host", &values.NotifySMTPHost},
		{"notify_smtp_username", &values.NotifySMTPUsername},
		{"notify_smtp_password", &values.NotifySMTPPassword},
		{"notify_email_from", &values.NotifyEmailFrom},
		{"notify_custom_script", &values.NotifyCustomScript},
	}
	for _, sk := range stringKeys {
		if key, err := section.GetKey(sk.key); err == nil {
			*sk.field = strings.TrimSpace(key.String())
		}
	}
	return nil
}

// splitList returns the comma-separated, trimmed, non-empty items of a key.
func splitList(section *ini.Section, name string) []string {
	key, err := section.GetKey(name)
	if err != nil {
		return nil
	}
	var res []string
	for p := range strings.SplitSeq(key.String(), ",") {
		if t := strings.TrimSpace(p); t != "" {
			res = append(res, t)
		}
	}
	return res
}

// stripComments removes full-line # and ; comments.
func stripComments(content string) string {
	var b strings.Builder
	for line := range strings.SplitSeq(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// mergeFrom merges non-empty values from src into dst.
func (dst *Values) mergeFrom(src *Values) {
	if src.PrecisionSet {
		dst.Precision = src.Precision
		dst.PrecisionSet = true
	}
	if src.OutputFormat != "" {
		dst.OutputFormat = src.OutputFormat
	}
	if src.WatchDebounceMsSet {
		dst.WatchDebounceMs = src.WatchDebounceMs
		dst.WatchDebounceMsSet = true
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}

	if len(src.NotifyChannels) > 0 {
		dst.NotifyChannels = src.NotifyChannels
	}
	if src.NotifyOnErrorSet {
		dst.NotifyOnError = src.NotifyOnError
		dst.NotifyOnErrorSet = true
	}
	if src.NotifyOnCompleteSet {
		dst.NotifyOnComplete = src.NotifyOnComplete
		dst.NotifyOnCompleteSet = true
	}
	if src.NotifyOnDegenerateSet {
		dst.NotifyOnDegenerate = src.NotifyOnDegenerate
		dst.NotifyOnDegenerateSet = true
	}
	if src.NotifyAlphaBelowSet {
		dst.NotifyAlphaBelow = src.NotifyAlphaBelow
		dst.NotifyAlphaBelowSet = true
	}
	if src.NotifyTimeoutMsSet {
		dst.NotifyTimeoutMs = src.NotifyTimeoutMs
		dst.NotifyTimeoutMsSet = true
	}
	if src.NotifyTelegramToken != "" {
		dst.NotifyTelegramToken = src.NotifyTelegramToken
	}
	if src.NotifyTelegramChat != "" {
		dst.NotifyTelegramChat = src.NotifyTelegramChat
	}
	if src.NotifySlackToken != "" {
		dst.NotifySlackToken = src.NotifySlackToken
	}
	if src.NotifySlackChannel != "" {
		dst.NotifySlackChannel = src.NotifySlackChannel
	}
	if src.NotifySMTPHost != "" {
		dst.NotifySMTPHost = src.NotifySMTPHost
	}
	if src.NotifySMTPPort != 0 {
		dst.NotifySMTPPort = src.NotifySMTPPort
	}
	if src.NotifySMTPUsername != "" {
		dst.NotifySMTPUsername = src.NotifySMTPUsername
	}
	if src.NotifySMTPPassword != "" {
		dst.NotifySMTPPassword = src.NotifySMTPPassword
	}
	if src.NotifySMTPStartTLSSet {
		dst.NotifySMTPStartTLS = src.NotifySMTPStartTLS
		dst.NotifySMTPStartTLSSet = true
	}
	if src.NotifyEmailFrom != "" {
		dst.NotifyEmailFrom = src.NotifyEmailFrom
	}
	if len(src.NotifyEmailTo) > 0 {
		dst.NotifyEmailTo = src.NotifyEmailTo
	}
	if len(src.NotifyWebhookURLs) > 0 {
		dst.NotifyWebhookURLs = src.NotifyWebhookURLs
	}
	if src.NotifyCustomScript != "" {
		dst.NotifyCustomScript = src.NotifyCustomScript
	}
}
