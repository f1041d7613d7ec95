package config

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Load overlays settings, as produced by viper.AllSettings, on Default and
// validates the result. Lists in settings replace the default lists instead
// of being merged element by element.
func Load(settings map[string]any) (*Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			resetSlices,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("creating config decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func resetSlices(from, to reflect.Value) (interface{}, error) {
	if to.Kind() == reflect.Slice && to.CanSet() {
		to.Set(reflect.Zero(to.Type()))
	}
	return from.Interface(), nil
}
