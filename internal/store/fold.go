package store

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"

	"github.com/franz/playtest-history/internal/util"
)

// FoldFunc is the SQL function every store connection exposes for caseless
// matching: casefold(text) returns util.FoldCase(text), NULL stays NULL.
const FoldFunc = "casefold"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(FoldFunc, 1, casefold); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", FoldFunc, err))
	}
}

func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return util.FoldCase(v), nil
	case []byte:
		return util.FoldCase(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", FoldFunc, v)
	}
}
