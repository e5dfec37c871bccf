package inventory

import "time"

// StartOfDay 00:00:00.000 del día de t en su zona horaria.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay 23:59:59.999 del día de t en su zona horaria.
// Una fecha final de reporte incluye el día completo.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DayRange devuelve los límites inclusivos del día calendario de t.
func DayRange(t time.Time) (start, end time.Time) {
	return StartOfDay(t), EndOfDay(t)
}
