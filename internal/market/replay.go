package market

import (
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"alphatick/internal/types"
)

// LoadTicks reads a recorded tick series from a JSON file. The file may
// be a bare array or an object with a "ticks" array; extra fields are
// ignored so captures from different recorders load unchanged.
func LoadTicks(path, symbol string) ([]types.Tick, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tick file failed: %w", err)
	}
	doc := gjson.ParseBytes(raw)
	rows := doc
	if doc.IsObject() {
		rows = doc.Get("ticks")
	}
	if !rows.IsArray() {
		return nil, fmt.Errorf("tick file %s has no tick array", path)
	}

	var ticks []types.Tick
	rows.ForEach(func(_, row gjson.Result) bool {
		tick := types.Tick{
			Symbol: symbol,
			Open:   row.Get("open").Float(),
			High:   row.Get("high").Float(),
			Low:    row.Get("low").Float(),
			Close:  row.Get("close").Float(),
			Volume: row.Get("volume").Float(),
		}
		if s := row.Get("symbol").String(); s != "" {
			tick.Symbol = s
		}
		if ms := row.Get("timestamp").Int(); ms > 0 {
			tick.Timestamp = time.UnixMilli(ms)
		}
		if tick.Close > 0 && (symbol == "" || tick.Symbol == symbol) {
			ticks = append(ticks, tick)
		}
		return true
	})
	if len(ticks) == 0 {
		return nil, fmt.Errorf("tick file %s yielded no usable ticks for %s", path, symbol)
	}
	return ticks, nil
}
