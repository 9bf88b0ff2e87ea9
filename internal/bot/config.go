// Package bot implements the Sharicrepas conversational ordering flow:
// intent classification, the per-customer dialogue state machine, the
// two-turn order capture pipeline, and message dispatch with audit logging.
package bot

// Business facts referenced by message templates and order creation.
// These literals are part of the customer-facing contract.
const (
	BusinessName  = "Sharicrepas"
	BusinessPhone = "6862584142"
	FacebookURL   = "https://www.facebook.com/ShariCrepas/"
	CatalogURL    = "https://wa.me/c/5216862584142"
	MapsURL       = "https://maps.app.goo.gl/Ry67QEz6tMjaZVMGA"

	// EstimatedTimeMinutes is recorded on every WhatsApp order.
	EstimatedTimeMinutes = 20
)

// Business-hours constants. Closed all day Wednesday; open 16:00-22:59
// local time on every other day.
const (
	OpeningHour = 16
	ClosingHour = 23
)
