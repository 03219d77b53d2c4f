// Package main 启动应用程序
package main

import "github.com/yeisme/exceleasy/pkg/cmd"

//	@title			Excel Easy API
//	@version		1.0
//	@description	Excel Easy 表格导入服务：上传 .xls/.xlsx，保存解析后的数据，查询历史与活动日志。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
