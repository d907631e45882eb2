package vo

import (
	"fmt"
	"sort"
	"strings"
)

// Directive 转码引擎消费的单条原语指令；指令列表的顺序即执行顺序。
type Directive struct {
	Op   string            `json:"op"`
	Args map[string]string `json:"args,omitempty"`
}

// NewDirective builds a directive from alternating key/value argument pairs.
func NewDirective(op string, kv ...string) Directive {
	d := Directive{Op: op}
	if len(kv) > 0 {
		d.Args = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			d.Args[kv[i]] = kv[i+1]
		}
	}
	return d
}

// Arg returns the named argument value, empty when absent.
func (d Directive) Arg(name string) string {
	return d.Args[name]
}

// String renders the directive with sorted argument keys so output is stable.
func (d Directive) String() string {
	if len(d.Args) == 0 {
		return d.Op
	}
	keys := make([]string, 0, len(d.Args))
	for k := range d.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, d.Args[k]))
	}
	return fmt.Sprintf("%s(%s)", d.Op, strings.Join(parts, ","))
}
