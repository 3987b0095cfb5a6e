package config

import "time"

// Environment variable names for the required secrets.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

const (
	keyPracticumToken = "practicum_token"
	keyTelegramToken  = "telegram_token"
	keyTelegramChatID = "telegram_chat_id"
	keyEndpoint       = "practicum_endpoint"
	keyFromDate       = "practicum_from_date"
	keyRequestTimeout = "practicum_timeout"
	keyRetryInterval  = "retry_interval"
	keyTelegramAPIURL = "telegram_api_url"
	keyLogLevel       = "log_level"
	keyLogFile        = "log_file"
	keyJournalPath    = "journal_path"
)

const (
	DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	// Fixed delay between polls. There is no backoff on failure.
	DefaultRetryInterval  = 600 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultDotEnvFile     = ".env"

	// CursorNow makes the first poll start at process start time.
	CursorNow int64 = -1
)
