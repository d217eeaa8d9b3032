package resource

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fieldValue resolves a dotted path (e.g. "created.at_time") against
// nested document maps. Missing segments resolve to nil.
func fieldValue(doc interface{}, path string) interface{} {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case Document:
			cur = m[part]
		case map[string]interface{}:
			cur = m[part]
		case bson.M:
			cur = m[part]
		case primitive.D:
			cur = nil
			for _, e := range m {
				if e.Key == part {
					cur = e.Value
					break
				}
			}
		default:
			return nil
		}
	}
	return cur
}

// compareValues orders two sort-key values the way the store index
// would: nil first, then numerics, strings and timestamps by their
// natural order. Mixed or unknown types fall back to their string
// forms so the ordering stays total and deterministic.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if at, ok := toTime(a); ok {
		if bt, bok := toTime(b); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}
