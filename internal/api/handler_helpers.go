package api

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

var errInvalidID = errors.New("invalid id")

func parseIDParam(idParam string) (uint, error) {
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// parseDate 接受 RFC3339 或 YYYY-MM-DD 两种日期格式。
// 后台表单用 date 输入框，公网客户端用完整时间戳。
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(data)
}

func emptyJSONArray() datatypes.JSON {
	return datatypes.JSON([]byte("[]"))
}

// rawOrEmptyArray 保证 JSONB 列渲染到响应里时至少是空数组而不是 null。
func rawOrEmptyArray(raw datatypes.JSON) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return emptyJSONArray()
	}
	return raw
}

func adminIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("adminID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
