// Package main 启动应用程序
package main

import "github.com/yeisme/ingestvault/pkg/cmd"

//	@title			IngestVault API
//	@version		1.0
//	@description	IngestVault 跟踪从数据源到对象组的摄取流程，提供流程登记、部分更新、标签管理与限时下载链接等能力。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
