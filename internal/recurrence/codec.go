package recurrence

import (
	"encoding/json"
	"fmt"
)

// Rules are persisted as tagged JSON so a schedule row can never carry both
// variants at once.
type envelope struct {
	Type string          `json:"type"`
	Rule json.RawMessage `json:"rule"`
}

const (
	typeWeekly = "weekly"
	typeCustom = "custom"
)

func Marshal(r Rule) ([]byte, error) {
	var typ string
	switch r.(type) {
	case Weekly:
		typ = typeWeekly
	case Custom:
		typ = typeCustom
	default:
		return nil, fmt.Errorf("unknown rule type %T", r)
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	return json.Marshal(envelope{Type: typ, Rule: raw})
}

func Unmarshal(data []byte) (Rule, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed recurrence: %w", err)
	}

	switch env.Type {
	case typeWeekly:
		var w Weekly
		if err := json.Unmarshal(env.Rule, &w); err != nil {
			return nil, fmt.Errorf("malformed weekly rule: %w", err)
		}
		return w, nil
	case typeCustom:
		var c Custom
		if err := json.Unmarshal(env.Rule, &c); err != nil {
			return nil, fmt.Errorf("malformed custom rule: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown recurrence type %q", env.Type)
	}
}
