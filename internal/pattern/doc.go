// Package pattern implements the repetition-pattern algebra used to compute
// a task schedule's next due time.
//
// Three shapes are recognized, distinguished by segment count after
// splitting on ".":
//
//   - Interval (2 segments): "N.UNIT", e.g. "5.seconds", "3.days".
//   - Weekday (4 segments): "WW.HH.MM.SS", e.g. "Monday|Friday.09.00.00".
//   - Month/day (5 segments): "MM.DD.HH.mm.ss", e.g. "**.31.00.00.00".
//
// A Pattern is immutable once parsed; Next is a pure function of the
// instant passed to it.
package pattern
