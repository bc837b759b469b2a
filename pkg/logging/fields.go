package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// appendField adds one key/value pair to a child-logger context using the
// typed zerolog setter for the value's kind. Errors land in the standard
// error field when keyed as such, otherwise as their message text.
func appendField(zctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return zctx.Str(key, v)
	case int:
		return zctx.Int(key, v)
	case int64:
		return zctx.Int64(key, v)
	case uint:
		return zctx.Uint(key, v)
	case uint64:
		return zctx.Uint64(key, v)
	case float32:
		return zctx.Float32(key, v)
	case float64:
		return zctx.Float64(key, v)
	case bool:
		return zctx.Bool(key, v)
	case time.Time:
		return zctx.Time(key, v)
	case time.Duration:
		return zctx.Dur(key, v)
	case error:
		if key == "error" || key == "err" {
			return zctx.Err(v)
		}
		return zctx.Str(key, v.Error())
	default:
		return zctx.Interface(key, v)
	}
}
