package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Lunar/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Lunar"
	AppCommand        = "go-lunar"
	AppID             = "com.github.tartampluch.go-lunar"
	KeyringService    = "com.github.tartampluch.go-lunar"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "settings.yaml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the settings file.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug    = "debug"
	FlagFormat   = "format"
	FlagSettings = "settings"
	FlagLeap     = "leap"
	FlagPort     = "port"
	FlagLang     = "lang"
	FlagAt       = "at"

	FlagDescDebug    = "Enable debug logging"
	FlagDescFormat   = "Output format: text or json"
	FlagDescSettings = "Settings file (default: user config dir)"
	FlagDescLeap     = "The lunar date is in the leap month"
	FlagDescPort     = "Override the server port from the settings file"
	FlagDescLang     = "Language of labels and summaries (default: from settings)"
	FlagDescAt       = "Render the feed as of this day, YYYY-MM-DD (default: today)"

	FormatText = "text"
	FormatJSON = "json"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// CLI Commands
// -----------------------------------------------------------------------------

const (
	CmdUseServe    = "serve"
	CmdUseLunar    = "lunar <yyyy-mm-dd>"
	CmdUseSolar    = "solar <yyyy-mm-dd>"
	CmdUseDay      = "day [yyyy-mm-dd]"
	CmdUseTerms    = "terms <year>"
	CmdUseMonth    = "month [yyyy-mm]"
	CmdUseYear     = "year <lunar-year>"
	CmdUseExport   = "export"
	CmdUsePassword = "password"
	CmdUseVersion  = "version"

	// CmdAnnotationService marks commands that run as a long-lived service.
	CmdAnnotationService = "service"

	CmdShortRoot     = "Chinese lunar calendar converter and feed server"
	CmdShortServe    = "Serve the lunar calendar feed and the JSON API"
	CmdShortLunar    = "Convert a Gregorian date to the lunar calendar"
	CmdShortSolar    = "Convert a lunar date to the Gregorian calendar"
	CmdShortDay      = "Describe a Gregorian day (default: today)"
	CmdShortTerms    = "List the 24 solar terms of a Gregorian year"
	CmdShortMonth    = "Print a month grid with lunar days (default: this month)"
	CmdShortYear     = "Describe a lunar year"
	CmdShortExport   = "Write the calendar feed to standard output"
	CmdShortPassword = "Store the CardDAV password read from standard input in the OS keyring"
	CmdShortVersion  = "Print version information"

	CmdExampleSolar = "  go-lunar solar 2023-L02-01\n  go-lunar solar 2023-02-01 --leap"

	// Text output layouts
	FormatConversion = "%s  %s  %s\n"
	FormatTermLine   = "%s  %s\n"
	FormatMonthTitle = "%04d-%02d  %s %s"
	FormatYearTitle  = "%d  %s %s"
	FormatMonthSpan  = "%s  %d\n"

	MonthCellWidth = 8
	MonthCellRunes = 4
	LabelWidth     = 16
)

// -----------------------------------------------------------------------------
// Languages
// -----------------------------------------------------------------------------

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "zh"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyEvtLunarBday      = "event_lunar_birthday"       // Requires Name
	TKeyEvtLunarBdayAge   = "event_lunar_birthday_age"   // Requires Name, Age
	TKeyEvtLunarBdayBirth = "event_lunar_birthday_birth" // Requires Name (For age 0)
	TKeyEvtFestival       = "event_festival"             // Requires Name, Year (stem-branch)
	TKeyEvtTerm           = "event_solar_term"           // Requires Name
	TKeyCalName           = "calendar_name"
	TKeyLblLunar          = "lbl_lunar"
	TKeyLblGanZhi         = "lbl_ganzhi"
	TKeyLblZodiac         = "lbl_zodiac"
	TKeyLblConstellation  = "lbl_constellation"
	TKeyLblTerm           = "lbl_term"
	TKeyLblFestivals      = "lbl_festivals"
	TKeyWeekdays          = "weekdays_short" // Seven names separated by spaces, Sunday first
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	SourceModeNone       = "none"
	DefaultPort          = "18081"
	DefaultRefreshMin    = 60
	DefaultLanguage      = "en"
	DefaultReminderValue = 1
	UIDNamespace         = "go-lunar-v1" // Name-based UUID namespace seed

	// FormatSchedule is the cron spec of the periodic sync; expects minutes.
	FormatSchedule = "@every %dm"
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Lunar//Engine//EN"
	ICalCalName   = "Lunar Calendar"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "golunar"
	ICalTransp    = "TRANSPARENT"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRRule       = "RRULE"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTransp      = "TRANSP"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	CategoryBirthday = "BIRTHDAY"
	CategoryFestival = "FESTIVAL"
	CategoryTerm     = "SOLAR-TERM"

	VCardBDAY  = "BDAY"
	VCardBegin = "BEGIN:VCARD"
	VCardFN    = "FN"
	VCardN     = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatMonth     = "2006-01"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort        = 1
	MaxPort        = 65535
	MaxReminderVal = 10000

	// UID Generation
	FormatHashInput = "%s|%s"
	FormatUID       = "%s-%d@%s"

	// FormatRecurringUID has no year: a recurring series keeps its UID forever.
	FormatRecurringUID = "%s@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteAPI            = "/api/v1"
	RouteLunar          = "/lunar"
	RouteSolar          = "/solar"
	RouteDay            = "/day"
	RouteTerms          = "/terms/:year"
	RouteBirthdays      = "/birthdays"
	RouteYear           = "/year/:year"
	AddrSeparator       = ":"
	ParamDate           = "date"
	ParamLeap           = "leap"
	ParamYear           = "year"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeHTML            = "text/html"
	MimeXHTML           = "application/xhtml+xml"
	CacheControlPrivate = "private, no-cache"

	// AcceptVCard prefers vCard media types but takes whatever the server has.
	AcceptVCard = "text/vcard, text/x-vcard;q=0.9, text/directory;q=0.8, */*;q=0.1"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// API Response Codes
// -----------------------------------------------------------------------------

const (
	APICodeSuccess = 0
	APICodeFailure = -1
	APIMsgSuccess  = "success"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrIntervalRange    = "refresh interval must be positive"
	ErrReminderUnit     = "unsupported reminder unit"
	ErrReminderDir      = "unsupported reminder direction"
	ErrReminderValue    = "reminder value must be between 1 and 10000"
	ErrLanguage         = "unsupported language"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create app directory"
	ErrSettingsRead     = "failed to read settings"
	ErrSettingsParse    = "failed to parse settings"
	ErrSettingsWrite    = "failed to write settings"
	ErrSettingsInvalid  = "invalid settings"
	ErrAppFailed        = "application failed unexpectedly"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrLocNotInit       = "localizer not initialized"
	ErrSchedule         = "failed to schedule sync"
	ErrWatcher          = "failed to watch settings file"
	ErrBadRequestDate   = "date must be formatted as YYYY-MM-DD"
	ErrBadRequestYear   = "year must be a number"
	ErrBadRequestMonth  = "month must be formatted as YYYY-MM"
	ErrBadRequestLeap   = "leap must be true or false"
	ErrLeapConflict     = "leap=false contradicts a leap-month date"
	ErrArgCount         = "wrong number of arguments"
	ErrUnknownFormat    = "unknown output format"
	ErrPasswordNotFound = "no password stored for user"
	ErrRequestCreate    = "failed to create request"
	ErrNetwork          = "network error during fetch"
	ErrHTTPStatus       = "server returned unexpected status"
	ErrNotAddressBook   = "response is not a vCard address book"
	ErrBookTooLarge     = "address book exceeds the download limit"
	ErrRRule            = "failed to build recurrence rule"
	ErrToday            = "today is outside the supported lunar range"
	ErrUsernameEmpty    = "configuration error: username is empty"
	ErrPasswordEmpty    = "password is empty"
	ErrPasswordStore    = "failed to store password"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Lunar birthday: %s"
	FallbackSummaryAge   = "Lunar birthday: %s (%d)"
	FallbackSummaryBirth = "Lunar birthday: %s (birth)"
	FallbackFestival     = "%s (%s)"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted    = "Synchronization started..."
	MsgSyncFailed     = "Synchronization failed. Check logs."
	MsgSyncReq        = "Sync requested"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgUpdateSync     = "Updating sync interval"
	MsgSettingsReload = "Settings file changed, reloading"
	MsgAppStop        = "Application stopped gracefully"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgSkippedRange   = "Skipping birth date outside the lunar table"
	MsgSkippedYear    = "Skipping birthday without a birth year"
	MsgGenSuccess     = "Calendar generation successful"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %v\n"
	MsgBdayToday      = "Lunar birthday found today"
	MsgAPIRequest     = "API request rejected"
	MsgSettingsLoaded = "Settings loaded"
	MsgSyncFinished   = "Sync finished"
	MsgFetchStart     = "Initiating vCard download"
	MsgFetchStatus    = "Server returned error status"
	MsgFetchBody      = "vCards downloading"
	MsgRequestServed  = "Request served"
	MsgReloadRejected = "Settings reload rejected, keeping previous settings"
	MsgPortChanged    = "Server port changed, restart to apply"
	MsgWatcherStart   = "Watching settings file"
	MsgCronEvent      = "Scheduler event"
	MsgCronError      = "Scheduler error"
	MsgPasswordStored = "Password stored in the OS keyring"
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeySkipped   = "skipped_cards"
	LogKeyToday     = "birthdays_today"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyLunarDOB  = "lunar_date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyPath      = "path"
	LogKeyRoute     = "route"
	LogKeySchedule  = "schedule"
	LogKeyLength    = "content_length"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompCLI      = "cli"
	CompSettings = "settings"
	CompEngine   = "engine"
	CompServer   = "server"
	CompAPI      = "api"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
)
