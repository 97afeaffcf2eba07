package xgo

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON 用于日志输出，编码失败时返回错误信息
func ToJSON(v any) string {
	s, err := json.MarshalToString(v)
	if err != nil {
		return err.Error()
	}
	return s
}
