package dataapi

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata/types"

	"github.com/Rana718/schemaseed/internal/database/common"
)

const timestampLayout = "2006-01-02 15:04:05"

// toParameter converts a Go value to a named Data API parameter. Decimals
// travel as strings with a DECIMAL hint so no precision is lost in transit.
func toParameter(name string, v interface{}) (types.SqlParameter, error) {
	param := types.SqlParameter{Name: aws.String(name)}

	switch val := v.(type) {
	case nil:
		param.Value = &types.FieldMemberIsNull{Value: true}
	case common.Decimal:
		param.Value = &types.FieldMemberStringValue{Value: string(val)}
		param.TypeHint = types.TypeHintDecimal
	case string:
		param.Value = &types.FieldMemberStringValue{Value: val}
	case int:
		param.Value = &types.FieldMemberLongValue{Value: int64(val)}
	case int32:
		param.Value = &types.FieldMemberLongValue{Value: int64(val)}
	case int64:
		param.Value = &types.FieldMemberLongValue{Value: val}
	case float64:
		param.Value = &types.FieldMemberDoubleValue{Value: val}
	case bool:
		param.Value = &types.FieldMemberBooleanValue{Value: val}
	case []byte:
		param.Value = &types.FieldMemberBlobValue{Value: val}
	case time.Time:
		param.Value = &types.FieldMemberStringValue{Value: val.UTC().Format(timestampLayout)}
		param.TypeHint = types.TypeHintTimestamp
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return param, fmt.Errorf("failed to convert parameter %s: %w", name, err)
		}
		return toParameter(name, inner)
	default:
		return param, fmt.Errorf("unsupported parameter type %T for %s", v, name)
	}

	return param, nil
}

func toParameters(args []interface{}) ([]types.SqlParameter, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make([]types.SqlParameter, len(args))
	for i, arg := range args {
		p, err := toParameter(paramName(i), arg)
		if err != nil {
			return nil, err
		}
		params[i] = p
	}
	return params, nil
}

func fromField(f types.Field) interface{} {
	switch v := f.(type) {
	case *types.FieldMemberIsNull:
		return nil
	case *types.FieldMemberStringValue:
		return v.Value
	case *types.FieldMemberLongValue:
		return v.Value
	case *types.FieldMemberDoubleValue:
		return v.Value
	case *types.FieldMemberBooleanValue:
		return v.Value
	case *types.FieldMemberBlobValue:
		return string(v.Value)
	case *types.FieldMemberArrayValue:
		return fmt.Sprintf("%v", v.Value)
	default:
		return nil
	}
}

func fieldInt64(f types.Field) (int64, bool) {
	switch v := f.(type) {
	case *types.FieldMemberLongValue:
		return v.Value, true
	case *types.FieldMemberStringValue:
		var id int64
		if _, err := fmt.Sscan(v.Value, &id); err == nil {
			return id, true
		}
	}
	return 0, false
}

func paramName(i int) string {
	return fmt.Sprintf("p%d", i+1)
}

// namedPlaceholders rewrites positional ? markers to :p1..:pn, leaving
// quoted literals and identifiers untouched.
func namedPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			b.WriteString(":" + paramName(n))
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
