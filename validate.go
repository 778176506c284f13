package weft

import "github.com/weftrun/weft/pkg/schema"

// validateWith runs s.Parse against *valuePtr when s is non-nil, replacing
// *valuePtr with the (possibly coerced) result. A nil schema is treated as
// "no constraint declared" and always succeeds.
func validateWith(s schema.Schema, valuePtr *any) error {
	if s == nil {
		return nil
	}
	parsed, err := s.Parse(*valuePtr)
	if err != nil {
		return err
	}
	*valuePtr = parsed
	return nil
}
