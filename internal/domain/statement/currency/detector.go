// Package currency infers the currency of a statement from symbols and ISO codes
// in its text, falling back to the user's timezone when the text has no markers.
package currency

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
)

// markers holds the symbol and code patterns counted for each currency.
// Short forms such as "RM" and "Rp" only count when a figure follows them.
var markers = map[model.Currency]*regexp.Regexp{
	model.USD: regexp.MustCompile(`\$|` + isoCode("USD")),
	model.GBP: regexp.MustCompile(`£|` + isoCode("GBP")),
	model.EUR: regexp.MustCompile(`€|` + isoCode("EUR")),
	model.INR: regexp.MustCompile(`₹|` + isoCode("INR") + `|\bRs\.?\s?\d|(?i:\brupees?\b)`),
	model.SAR: regexp.MustCompile(isoCode("SAR") + `|﷼`),
	model.AED: regexp.MustCompile(isoCode("AED")),
	model.MYR: regexp.MustCompile(isoCode("MYR") + `|\bRM\s?\d`),
	model.IDR: regexp.MustCompile(isoCode("IDR") + `|\bRp\.?\s?\d`),
}

// isoCode matches a currency code standing alone or written against a figure,
// as in "EUR120.00" or "12.50AED", but not inside a word such as "SARAH".
func isoCode(code string) string {
	return `(?:\b|\d)` + code + `(?:\b|\d)`
}

// overrideOrder is the order in which a single line is checked for its own currency.
var overrideOrder = []model.Currency{
	model.SAR, model.AED, model.INR, model.MYR, model.IDR, model.GBP, model.EUR, model.USD,
}

// timezoneHints maps IANA zone name fragments to the local currency.
var timezoneHints = []struct {
	fragment string
	currency model.Currency
}{
	{"Kolkata", model.INR},
	{"Calcutta", model.INR},
	{"Riyadh", model.SAR},
	{"Dubai", model.AED},
	{"Jakarta", model.IDR},
	{"Kuala_Lumpur", model.MYR},
	{"London", model.GBP},
	{"Berlin", model.EUR},
	{"Paris", model.EUR},
	{"Madrid", model.EUR},
	{"Amsterdam", model.EUR},
	{"Rome", model.EUR},
	{"Brussels", model.EUR},
	{"Vienna", model.EUR},
	{"Lisbon", model.EUR},
	{"Dublin", model.EUR},
	{"Helsinki", model.EUR},
	{"Athens", model.EUR},
}

// Detector picks the dominant currency of a batch.
type Detector struct {
	timezone string
}

// NewDetector creates a detector. An empty timezone is resolved from the
// environment via ResolveTimezone.
func NewDetector(timezone string) *Detector {
	return &Detector{timezone: ResolveTimezone(timezone)}
}

// Timezone returns the zone name used for the fallback.
func (d *Detector) Timezone() string {
	return d.timezone
}

// Dominant returns the currency with the most markers across all lines. Ties go to
// the currency listed first in model.Currencies. With no markers at all the
// timezone decides.
func (d *Detector) Dominant(lines []string) model.Currency {
	counts := Count(strings.Join(lines, "\n"))

	best := model.Currency("")
	bestCount := 0
	for _, c := range model.Currencies {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	if bestCount == 0 {
		return FromTimezone(d.timezone)
	}
	return best
}

// Count returns the number of markers per currency found in text.
func Count(text string) map[model.Currency]int {
	counts := make(map[model.Currency]int, len(markers))
	for c, re := range markers {
		counts[c] = len(re.FindAllStringIndex(text, -1))
	}
	return counts
}

// LineOverride returns the currency explicitly marked on a single line, if any.
func LineOverride(line string) (model.Currency, bool) {
	for _, c := range overrideOrder {
		if markers[c].MatchString(line) {
			return c, true
		}
	}
	return "", false
}

// FromTimezone maps an IANA zone name to a currency, defaulting to USD.
func FromTimezone(tz string) model.Currency {
	for _, h := range timezoneHints {
		if strings.Contains(tz, h.fragment) {
			return h.currency
		}
	}
	return model.USD
}

// localtimePath is the symlink naming the host zone when TZ is unset.
var localtimePath = "/etc/localtime"

// ResolveTimezone returns override when set, then $TZ, then the host zone name.
func ResolveTimezone(override string) string {
	if override != "" {
		return override
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	return hostZone(time.Local.String())
}

// hostZone turns the runtime's "Local" placeholder into an IANA name read from
// the localtime symlink, e.g. /usr/share/zoneinfo/Asia/Kolkata -> Asia/Kolkata.
func hostZone(name string) string {
	if name != "" && name != "Local" {
		return name
	}
	target, err := os.Readlink(localtimePath)
	if err != nil {
		return "UTC"
	}
	if _, zone, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/"); ok {
		zone = strings.TrimPrefix(strings.TrimPrefix(zone, "posix/"), "right/")
		if zone != "" {
			return zone
		}
	}
	return "UTC"
}
