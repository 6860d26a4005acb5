package vitals

import "golang.org/x/text/language"

type options struct {
	title         string
	locale        language.Tag
	warnThreshold int64
	critThreshold int64
	topProblems   int
	portalURL     string
}

// Option configures a Digest.
type Option func(*options)

// WithTitle sets the report title. Default: "Player Health Status".
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithLocale sets the locale used for thousands separators in counts.
// Default: English.
func WithLocale(tag language.Tag) Option {
	return func(o *options) { o.locale = tag }
}

// WithThresholds sets the exception totals at which the status glyph
// turns warning and critical. Defaults: 2000 and 5000.
func WithThresholds(warn, crit int64) Option {
	return func(o *options) {
		o.warnThreshold = warn
		o.critThreshold = crit
	}
}

// WithTopProblems sets how many ranked issues the report carries.
// Default: 5.
func WithTopProblems(n int) Option {
	return func(o *options) { o.topProblems = n }
}

// WithPortalURL sets the telemetry portal link in the message footer.
func WithPortalURL(u string) Option {
	return func(o *options) { o.portalURL = u }
}

func defaultOptions() options {
	return options{
		title:         "Player Health Status",
		locale:        language.English,
		warnThreshold: 2000,
		critThreshold: 5000,
		topProblems:   5,
		portalURL:     "https://portal.azure.com",
	}
}
