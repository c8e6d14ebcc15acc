package impl

import (
	"context"
	"encoding/json"
	"fmt"
)

func (d *dbImpl) GetOption(ctx context.Context, name string) (map[string]any, error) {
	raw, err := d.queries.GetOption(ctx, name)
	if err != nil {
		return nil, d.HandleError(err)
	}

	var value map[string]any
	if err = json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("option %s holds malformed JSON: %w", name, err)
	}
	return value, nil
}

func (d *dbImpl) PutOption(ctx context.Context, name string, value map[string]any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return d.HandleError(d.queries.UpsertOption(ctx, name, string(raw)))
}
