// Package timezone holds the application calendar that stay dates are read on.
//
// The zone comes from APP_TIMEZONE (an IANA name such as "Asia/Jakarta") and is
// loaded when the package is imported; unknown names fall back to UTC.
//
//	start, err := timezone.ParseDate("2024-11-03")   // midnight on the app calendar
//	today := timezone.StartOfDay(timezone.Now())      // earliest allowed check-in
//	month := timezone.StartOfMonth(timezone.Now(), -11)
//
// Durations between stay dates should be taken between WallClock readings:
// a night across a daylight saving change lasts 23 or 25 real hours but is
// still one night.
package timezone
