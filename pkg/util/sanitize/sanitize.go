package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// Text 去掉所有 HTML 标签和空字节
// 用于把浏览器或好友服务提供的文本写入日志，页面渲染直接交给 html/template 转义
func Text(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return htmlPolicy.Sanitize(input)
}
