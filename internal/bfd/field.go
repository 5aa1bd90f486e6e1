package bfd

import "github.com/conneroisu/bfdconf/internal/validation"

// Field names one configurable attribute of a session.
type Field int

const (
	FieldSource Field = iota
	FieldNeighbor
	FieldMinRx
	FieldMinTx
	FieldIdleTx
	FieldMultiplier
	FieldPassive
	FieldTTL
	FieldMaxHops
)

var fieldKeywords = map[Field]string{
	FieldSource:     "source_ip",
	FieldNeighbor:   "neighbor_ip",
	FieldMinRx:      "min_rx",
	FieldMinTx:      "min_tx",
	FieldIdleTx:     "idle_tx",
	FieldMultiplier: "multiplier",
	FieldPassive:    "passive",
	FieldTTL:        "ttl",
	FieldMaxHops:    "max_hops",
}

// Keywords lists every session keyword in installation order, including
// the hoplimit alias for ttl.
var Keywords = []string{
	"source_ip",
	"neighbor_ip",
	"min_rx",
	"min_tx",
	"idle_tx",
	"multiplier",
	"passive",
	"ttl",
	"hoplimit",
	"max_hops",
}

// String returns the configuration keyword for the field.
func (f Field) String() string {
	if kw, ok := fieldKeywords[f]; ok {
		return kw
	}
	return "unknown"
}

// TakesArgument reports whether the keyword expects a value token.
func (f Field) TakesArgument() bool {
	return f != FieldPassive
}

// FieldForKeyword maps a configuration keyword to its field.
func FieldForKeyword(keyword string) (Field, bool) {
	if keyword == "hoplimit" {
		return FieldTTL, true
	}
	for f, kw := range fieldKeywords {
		if kw == keyword {
			return f, true
		}
	}
	return 0, false
}

// numericRange returns the accepted range of a numeric field.
func numericRange(f Field) (validation.Range, bool) {
	switch f {
	case FieldMinRx:
		return MinRxRange, true
	case FieldMinTx:
		return MinTxRange, true
	case FieldIdleTx:
		return IdleTxRange, true
	case FieldMultiplier:
		return MultiplierRange, true
	case FieldTTL:
		return TTLRange, true
	case FieldMaxHops:
		return MaxHopsRange, true
	default:
		return validation.Range{}, false
	}
}
