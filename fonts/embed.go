package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是未指定字体时使用的内置字体名。
const Default = "goregular"

var builtin = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:goregular" 或直接 "goregular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	key = strings.TrimSuffix(key, ".ttf")
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可选值 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出全部内置字体名（已排序）。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
