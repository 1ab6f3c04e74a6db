package binding

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 JSON 数据 data 中的值。
// 路径支持 items[0].name 形式的下标。若 data 为空、不是合法 JSON 或路径不存在，则保留原占位符。
func Interpolate(text string, data []byte) string {
	if len(data) == 0 || !strings.Contains(text, "${") || !gjson.ValidBytes(data) {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		if val, ok := Lookup(data, exprPattern.FindStringSubmatch(match)[1]); ok {
			return val
		}
		return match
	})
}

// Lookup 返回 path 在 data 中对应值的文本形式。对象与数组返回原始 JSON。
func Lookup(data []byte, path string) (string, bool) {
	p := toGJSONPath(strings.TrimSpace(path))
	if p == "" {
		return "", false
	}
	res := gjson.GetBytes(data, p)
	if !res.Exists() {
		return "", false
	}
	switch res.Type {
	case gjson.JSON:
		return res.Raw, true
	case gjson.Null:
		return "", true
	default:
		return res.String(), true
	}
}

// Missing 返回 text 中在 data 里找不到的占位符路径，按出现顺序排列。
func Missing(text string, data []byte) []string {
	var out []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := Lookup(data, groups[1]); !ok {
			out = append(out, strings.TrimSpace(groups[1]))
		}
	}
	return out
}

// toGJSONPath 把 a.b[0][1] 转换为 gjson 的 a.b.0.1。
func toGJSONPath(path string) string {
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '[':
			if b.Len() > 0 {
				b.WriteByte('.')
			}
		case ']':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
