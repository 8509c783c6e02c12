// Package intent decodes externally produced trade intents (JSON from
// an upstream decision service) and enforces freshness before the
// trading loop will consider them.
package intent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"alphatick/internal/types"
)

// DefaultMaxAge is how stale an intent may be before it is dropped
// unseen. Upstream context older than this no longer reflects the
// market the loop is about to trade.
const DefaultMaxAge = 30 * time.Second

var intentSchema = mustCompile(`{
	"type": "object",
	"required": ["symbol", "signal", "confidence"],
	"properties": {
		"symbol": {"type": "string", "minLength": 1},
		"signal": {"enum": ["BUY", "SELL", "HOLD"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"reasoning": {"type": "string"},
		"suggested_quantity": {"type": "integer", "minimum": 0},
		"source": {"type": "string"},
		"context_age_seconds": {"type": "number", "minimum": 0}
	}
}`)

// Decoder parses and gates intents.
type Decoder struct {
	maxAge time.Duration
}

func NewDecoder(maxAge time.Duration) *Decoder {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Decoder{maxAge: maxAge}
}

// Decode parses raw JSON into an intent. It tolerates the payload
// being wrapped in an "intent" envelope or surrounded by prose, as
// upstream services sometimes do, then validates the extracted object
// against the schema.
func (d *Decoder) Decode(raw []byte) (types.IntentToTrade, error) {
	payload := extractObject(string(raw))
	if payload == "" {
		return types.IntentToTrade{}, fmt.Errorf("intent payload contains no JSON object")
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return types.IntentToTrade{}, fmt.Errorf("intent payload is not valid JSON: %w", err)
	}
	if err := intentSchema.Validate(doc); err != nil {
		return types.IntentToTrade{}, fmt.Errorf("intent failed schema validation: %w", err)
	}

	parsed := gjson.Parse(payload)
	intent := types.IntentToTrade{
		Symbol:            strings.ToUpper(parsed.Get("symbol").String()),
		Signal:            types.TradeSignal(parsed.Get("signal").String()),
		Confidence:        parsed.Get("confidence").Float(),
		Reasoning:         parsed.Get("reasoning").String(),
		SuggestedQuantity: parsed.Get("suggested_quantity").Int(),
		Source:            parsed.Get("source").String(),
		ContextAgeSeconds: parsed.Get("context_age_seconds").Float(),
	}
	if ts := parsed.Get("decision_time").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			intent.DecisionTime = t
		}
	}
	return intent, nil
}

// CheckFresh rejects intents whose upstream context is older than the
// decoder's max age.
func (d *Decoder) CheckFresh(intent types.IntentToTrade) error {
	age := time.Duration(intent.ContextAgeSeconds * float64(time.Second))
	if !intent.DecisionTime.IsZero() {
		if since := time.Since(intent.DecisionTime); since > age {
			age = since
		}
	}
	if age > d.maxAge {
		return fmt.Errorf("intent for %s is %.1fs old, limit %.1fs",
			intent.Symbol, age.Seconds(), d.maxAge.Seconds())
	}
	return nil
}

// extractObject pulls the first JSON object out of the payload,
// unwrapping an "intent" envelope when present.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	obj := s[start : end+1]
	if !gjson.Valid(obj) {
		return ""
	}
	if inner := gjson.Get(obj, "intent"); inner.IsObject() {
		return inner.Raw
	}
	return obj
}

func mustCompile(schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("intent.json", strings.NewReader(schema)); err != nil {
		panic(err)
	}
	compiled, err := compiler.Compile("intent.json")
	if err != nil {
		panic(err)
	}
	return compiled
}
