package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that unmarshals from both go duration strings
// ("90s", "2m") and bare numbers of seconds, in yaml and json configs.
type Duration time.Duration

func (d *Duration) Duration() time.Duration {
	return time.Duration(*d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var o interface{}
	if err := unmarshal(&o); err != nil {
		return err
	}

	return d.set(o)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var o interface{}
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}

	return d.set(o)
}

func (d *Duration) set(o interface{}) error {
	switch t := o.(type) {
	case string:
		dd, err := time.ParseDuration(t)
		if err != nil {
			return err
		}

		*d = Duration(dd)

	case float64:
		*d = Duration(int64(t * float64(time.Second)))

	case int64:
		*d = Duration(t * int64(time.Second))
	case int:
		*d = Duration(time.Duration(t) * time.Second)

	default:
		return fmt.Errorf("unsupported duration type %T value: %v", t, t)
	}

	return nil
}
