package internal

const (
	ConfigName = ".clifeed"
	EnvPrefix  = "CLIFEED"

	// BypassValidationEnv is read verbatim, without the env prefix, for compatibility
	// with existing release pipelines.
	BypassValidationEnv = "bypassDownloadLinkValidation"
	BypassValidationOn  = "1"

	DefaultFeedSource = "https://raw.githubusercontent.com/Azure/azure-functions-tooling-feed/main"
)

const (
	FeedFileMode = 0o644
	JSONIndent   = "  "
)
