package script

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ByLCY/stickerboard/dsl"
	"github.com/ByLCY/stickerboard/errs"
)

// args 是命令参数的两种读法：声明式的 [handle] key value ... 与动作式的位置参数。
type args struct {
	cmd    *dsl.Command
	handle string
	attrs  map[string]*dsl.Lexeme
	order  []string
}

// parseAttrs 解析 `name [handle] key value ...`；参数个数为奇数且首个为标识符时视为 handle。
func parseAttrs(cmd *dsl.Command) (*args, error) {
	a := &args{cmd: cmd, attrs: map[string]*dsl.Lexeme{}}
	list := cmd.Args
	if len(list)%2 == 1 {
		if list[0].Type != "Ident" {
			return nil, errorf(cmd, errs.CodeInvalidInput, "%s: 图层名 %q 必须是标识符", cmd.Name, list[0].Raw)
		}
		a.handle = list[0].Value
		list = list[1:]
	}
	for i := 0; i+1 < len(list); i += 2 {
		key := list[i].Value
		if list[i].Type != "Ident" {
			return nil, errorf(cmd, errs.CodeInvalidInput, "%s: 属性名 %q 无效", cmd.Name, list[i].Raw)
		}
		if _, dup := a.attrs[key]; dup {
			return nil, errorf(cmd, errs.CodeInvalidInput, "%s: 属性 %s 重复", cmd.Name, key)
		}
		a.attrs[key] = list[i+1]
		a.order = append(a.order, key)
	}
	return a, nil
}

func (a *args) has(key string) bool {
	_, ok := a.attrs[key]
	return ok
}

func (a *args) str(key, def string) string {
	if l, ok := a.attrs[key]; ok {
		return l.Value
	}
	return def
}

func (a *args) num(key string) (float64, bool, error) {
	l, ok := a.attrs[key]
	if !ok {
		return 0, false, nil
	}
	v, err := parseNumber(l.Value)
	if err != nil {
		return 0, true, errorf(a.cmd, errs.CodeInvalidInput, "%s: %s 不是数字: %q", a.cmd.Name, key, l.Raw)
	}
	return v, true, nil
}

// unknown 返回第一个不在 allowed 中的属性名。
func (a *args) unknown(allowed ...string) (string, bool) {
	for _, k := range a.order {
		if !slices.Contains(allowed, k) {
			return k, true
		}
	}
	return "", false
}

// positional 检查动作参数个数位于 [lo, hi]。
func positional(cmd *dsl.Command, lo, hi int) ([]*dsl.Lexeme, error) {
	n := len(cmd.Args)
	if n < lo || n > hi {
		if lo == hi {
			return nil, errorf(cmd, errs.CodeInvalidInput, "%s 需要 %d 个参数，实际 %d 个", cmd.Name, lo, n)
		}
		return nil, errorf(cmd, errs.CodeInvalidInput, "%s 需要 %d 到 %d 个参数，实际 %d 个", cmd.Name, lo, hi, n)
	}
	return cmd.Args, nil
}

func numberArg(cmd *dsl.Command, l *dsl.Lexeme) (float64, error) {
	v, err := parseNumber(l.Value)
	if err != nil {
		return 0, errorf(cmd, errs.CodeInvalidInput, "%s: %q 不是数字", cmd.Name, l.Raw)
	}
	return v, nil
}

// parseNumber 接受 12、-3.5、2x、16px 与 50%（百分比折算为小数）。
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s, scale = strings.TrimSuffix(s, "%"), 0.01
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "x"):
		s = strings.TrimSuffix(s, "x")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v * scale, nil
}

func parseBool(v *dsl.Value) (bool, bool) {
	switch strings.ToLower(valueToString(v)) {
	case "true", "yes", "on":
		return true, true
	case "false", "no", "off":
		return false, true
	}
	return false, false
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var b strings.Builder
		for _, part := range val.Expr.Parts {
			b.WriteString(part.Value)
		}
		return b.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var b strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			b.WriteString(string(stmt.Text.Value))
		}
	}
	return b.String()
}

// errorf 生成带脚本位置的结构化错误。
func errorf(cmd *dsl.Command, code errs.Code, format string, a ...any) *errs.Error {
	e := errs.New(code, format, a...)
	if cmd != nil && cmd.Pos.Line > 0 {
		e.Message = cmd.Pos.String() + ": " + e.Message
	}
	return e
}

// wrapAt 为已有错误补上脚本位置，错误码仍可由 errs.Is 取得。
func wrapAt(cmd *dsl.Command, err error) error {
	if err == nil {
		return nil
	}
	if cmd.Pos.Line > 0 {
		return fmt.Errorf("%s: %s: %w", cmd.Pos, cmd.Name, err)
	}
	return fmt.Errorf("%s: %w", cmd.Name, err)
}
