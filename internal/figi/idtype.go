package figi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownIDType is returned when an identifier type is not recognised by the mapping service
var ErrUnknownIDType = errors.New("unknown identifier type")

// IDType is the identifier type tag the mapping service accepts in the idType field.
// The full list is published at https://www.openfigi.com/api#v3-idType-values
type IDType string

const (
	IDTypeISIN                    IDType = "ID_ISIN"
	IDTypeBBUnique                IDType = "ID_BB_UNIQUE"
	IDTypeSEDOL                   IDType = "ID_SEDOL"
	IDTypeCommon                  IDType = "ID_COMMON"
	IDTypeWertpapier              IDType = "ID_WERTPAPIER"
	IDTypeCUSIP                   IDType = "ID_CUSIP"
	IDTypeCINS                    IDType = "ID_CINS"
	IDTypeBB                      IDType = "ID_BB"
	IDTypeItaly                   IDType = "ID_ITALY"
	IDTypeExchSymbol              IDType = "ID_EXCH_SYMBOL"
	IDTypeFullExchangeSymbol      IDType = "ID_FULL_EXCHANGE_SYMBOL"
	IDTypeCompositeBBGlobal       IDType = "COMPOSITE_ID_BB_GLOBAL"
	IDTypeBBGlobalShareClassLevel IDType = "ID_BB_GLOBAL_SHARE_CLASS_LEVEL"
	IDTypeBBSecNumDes             IDType = "ID_BB_SEC_NUM_DES"
	IDTypeBBGlobal                IDType = "ID_BB_GLOBAL"
	IDTypeTicker                  IDType = "TICKER"
	IDTypeCUSIP8Chr               IDType = "ID_CUSIP_8_CHR"
	IDTypeOCCSymbol               IDType = "OCC_SYMBOL"
	IDTypeUniqueIDFutOpt          IDType = "UNIQUE_ID_FUT_OPT"
	IDTypeOPRASymbol              IDType = "OPRA_SYMBOL"
	IDTypeTradingSystemIdentifier IDType = "TRADING_SYSTEM_IDENTIFIER"
	IDTypeBaseTicker              IDType = "BASE_TICKER"
	IDTypeVendorIndexCode         IDType = "VENDOR_INDEX_CODE"
)

var knownIDTypes = map[IDType]struct{}{
	IDTypeISIN:                    {},
	IDTypeBBUnique:                {},
	IDTypeSEDOL:                   {},
	IDTypeCommon:                  {},
	IDTypeWertpapier:              {},
	IDTypeCUSIP:                   {},
	IDTypeCINS:                    {},
	IDTypeBB:                      {},
	IDTypeItaly:                   {},
	IDTypeExchSymbol:              {},
	IDTypeFullExchangeSymbol:      {},
	IDTypeCompositeBBGlobal:       {},
	IDTypeBBGlobalShareClassLevel: {},
	IDTypeBBSecNumDes:             {},
	IDTypeBBGlobal:                {},
	IDTypeTicker:                  {},
	IDTypeCUSIP8Chr:               {},
	IDTypeOCCSymbol:               {},
	IDTypeUniqueIDFutOpt:          {},
	IDTypeOPRASymbol:              {},
	IDTypeTradingSystemIdentifier: {},
	IDTypeBaseTicker:              {},
	IDTypeVendorIndexCode:         {},
}

// Valid reports whether t is one of the identifier types the service accepts
func (t IDType) Valid() bool {
	_, ok := knownIDTypes[t]
	return ok
}

// ParseIDType normalises s (trimmed, upper-cased) and validates it
func ParseIDType(s string) (IDType, error) {
	t := IDType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIDType, s)
	}
	return t, nil
}
