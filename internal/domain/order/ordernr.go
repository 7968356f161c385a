package order

import (
	"fmt"
	"time"
)

// Work-order number and MES plan-id formats.
//
//	merged plan:  M<yyyymmdd><4-digit seq>
//	packer order: PK<yyyymmddHHMMSS><4-digit seq>
//	feeder order: FD<yyyymmddHHMMSS><4-digit seq>
//	MES plan id:  H<WS|JB><9-digit seq>

// MesKind is the two-letter MES order kind embedded in plan ids
type MesKind string

const (
	// MesKindFeeder - HWS, feeder (喂丝) work orders
	MesKindFeeder MesKind = "WS"

	// MesKindPacker - HJB, packer (卷包) work orders
	MesKindPacker MesKind = "JB"
)

// SequenceKind returns the key used against the sequence port ("HWS"/"HJB")
func (k MesKind) SequenceKind() string { return "H" + string(k) }

// FormatMergedNr builds a merged-plan work order number
func FormatMergedNr(date time.Time, seq int) string {
	return fmt.Sprintf("M%s%04d", date.Format("20060102"), seq)
}

// FormatPackerNr builds a packer split-order work order number
func FormatPackerNr(ts time.Time, seq int) string {
	return fmt.Sprintf("PK%s%04d", ts.Format("20060102150405"), seq)
}

// FormatFeederNr builds a feeder split-order work order number
func FormatFeederNr(ts time.Time, seq int) string {
	return fmt.Sprintf("FD%s%04d", ts.Format("20060102150405"), seq)
}

// FormatPlanID builds an MES plan id from a kind and sequence value
func FormatPlanID(kind MesKind, seq uint64) string {
	return fmt.Sprintf("H%s%09d", kind, seq)
}
